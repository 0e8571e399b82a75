package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/ledger"
	"github.com/trezcool/baraza/core/user"
)

type ledgerApi struct {
	svc      *ledger.Service
	usrSvc   *user.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerLedgerAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := ledgerApi{
		svc:      deps.LedgerSvc,
		usrSvc:   deps.UserSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	tg := g.Group("/transactions", jwt)
	tg.GET("/me", api.history)

	viewLedger := policyMiddleware(api.usrSvc, user.ActionViewLedger)
	tg.GET("", api.query, viewLedger)
	tg.POST("", api.award, viewLedger)
}

// Handlers

// history returns the calling user's own ledger, newest first.
func (api *ledgerApi) history(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	txs, err := api.svc.HistoryFor(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	return ctx.JSON(http.StatusOK, txs)
}

func (api *ledgerApi) query(ctx echo.Context) error {
	var filter ledger.Filter
	if raw := ctx.QueryParam("user_id"); raw != "" {
		uid, err := strconv.Atoi(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "invalid user id"})
		}
		filter.UserID = &uid
	}
	filter.Type = core.CleanString(ctx.QueryParam("transaction_type"), true /* lower */)

	txs, err := api.svc.QueryAll(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	return ctx.JSON(http.StatusOK, txs)
}

// award appends a ledger entry and shifts the user's stored balance in step.
func (api *ledgerApi) award(ctx echo.Context) error {
	var data AwardRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AwardRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.usrSvc.GetByID(ctx.Request().Context(), data.UserID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "user not found"})
		}
		return errors.Wrap(err, "finding user by ID")
	}

	txType := data.Type
	if txType == "" {
		txType = ledger.TypeAward
	}

	tx, err := api.svc.Append(ctx.Request().Context(), data.UserID, data.Amount, txType, data.Reason)
	if err != nil {
		return err
	}
	if _, err := api.usrSvc.AdjustParasStones(ctx.Request().Context(), data.UserID, data.Amount); err != nil {
		return errors.Wrap(err, "adjusting balance")
	}
	return ctx.JSON(http.StatusCreated, tx)
}

type AwardRequest struct {
	UserID int    `json:"user_id" validate:"required"`
	Amount int    `json:"amount" validate:"required"`
	Type   string `json:"transaction_type" validate:"omitempty,oneof=award spend adjustment purchase"`
	Reason string `json:"reason"`
}

func (ar *AwardRequest) Validate(validate *validator.Validate) error {
	ar.Type = core.CleanString(ar.Type, true /* lower */)
	ar.Reason = core.CleanString(ar.Reason)
	return validate.Struct(ar)
}
