package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/trezcool/baraza/apps/api/echo"
	"github.com/trezcool/baraza/core/ledger"
	"github.com/trezcool/baraza/core/user"
)

func appendTransaction(t *testing.T, usr user.User, amount int, txType, reason string, at time.Time) ledger.Transaction {
	t.Helper()

	tx, err := ledgerRepo.AppendTransaction(context.Background(), ledger.Transaction{
		UserID:    usr.ID,
		Amount:    amount,
		Type:      txType,
		Timestamp: at.UTC(),
		Reason:    reason,
	})
	if err != nil {
		t.Fatalf("AppendTransaction(): %v", err)
	}
	return tx
}

func Test_ledgerApi_history(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	other := createUser(t, "King", "Sol", "kingsol", "king@test.cd", "", "", true)

	now := time.Now().UTC()
	tx1 := appendTransaction(t, student, 50, ledger.TypeAward, "quiz", now.Add(-2*time.Hour))
	tx2 := appendTransaction(t, student, -10, ledger.TypeSpend, "avatar", now.Add(-1*time.Hour))
	appendTransaction(t, other, 20, ledger.TypeAward, "", now)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		// newest first; other users' entries stay out
		{name: "own history", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallList(t, tx2, tx1)},
		{name: "empty history", token: getToken(t, createUser(t, "New", "Comer", "newcomer", "new@test.cd", "", "", true)), wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/transactions/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_history(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	other := createUser(t, "King", "Sol", "kingsol", "king@test.cd", "", "", true)
	admin := createUser(t, "Admin", "Boss", "adminboss", "admin@test.cd", "", user.RoleAdmin, true)

	now := time.Now().UTC()
	tx1 := appendTransaction(t, student, 50, ledger.TypeAward, "quiz", now.Add(-2*time.Hour))
	tx2 := appendTransaction(t, student, -10, ledger.TypeSpend, "avatar", now.Add(-1*time.Hour))
	appendTransaction(t, other, 20, ledger.TypeAward, "", now)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "other users' ledgers stay hidden", token: getToken(t, other), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "own history", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallList(t, tx2, tx1)},
		{name: "admins see any history", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, tx2, tx1)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users/" + itoa(student.ID) + "/history"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_ledgerApi_query(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	admin := createUser(t, "Admin", "Boss", "adminboss", "admin@test.cd", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	now := time.Now().UTC()
	tx1 := appendTransaction(t, student, 50, ledger.TypeAward, "quiz", now.Add(-2*time.Hour))
	tx2 := appendTransaction(t, student, -10, ledger.TypeSpend, "avatar", now.Add(-1*time.Hour))
	tx3 := appendTransaction(t, admin, 5, ledger.TypeAdjust, "fixup", now)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/transactions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/transactions", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/transactions", token: adminToken, wantData: marchallList(t, tx3, tx2, tx1)},
		{name: "filter by user", path: "/v1/transactions?user_id=" + itoa(student.ID), token: adminToken, wantData: marchallList(t, tx2, tx1)},
		{name: "filter by type", path: "/v1/transactions?transaction_type=spend", token: adminToken, wantData: marchallList(t, tx2)},
		{
			name: "invalid user id", path: "/v1/transactions?user_id=lol", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"user_id": "invalid user id"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_ledgerApi_award(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	admin := createUser(t, "Admin", "Boss", "adminboss", "admin@test.cd", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)
	reqMsg := "this field is required"

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.AwardRequest{UserID: student.ID, Amount: 50}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.AwardRequest{}),
			wantData: marchallObj(t, map[string]string{"user_id": reqMsg, "amount": reqMsg}),
		},
		{
			name: "invalid type", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.AwardRequest{UserID: student.ID, Amount: 50, Type: "lol"}),
			wantData: marchallObj(t, map[string]string{"transaction_type": "transaction_type must be one of [award spend adjustment purchase]"}),
		},
		{
			name: "unknown user", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.AwardRequest{UserID: 999, Amount: 50}),
			wantData: marchallObj(t, map[string]string{"user_id": "user not found"}),
		},
		{
			name: "awarded", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, echoapi.AwardRequest{UserID: student.ID, Amount: 50, Reason: "quiz"}),
		},
		{
			name: "negative adjustment", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, echoapi.AwardRequest{UserID: student.ID, Amount: -10, Type: ledger.TypeAdjust}),
		},
	}
	wantBalance := 0
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/transactions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var data echoapi.AwardRequest
				if err := json.Unmarshal(tt.body, &data); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				var tx ledger.Transaction
				if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if tx.Amount != data.Amount {
					t.Errorf("failed! amount = %v; want %v", tx.Amount, data.Amount)
				}
				wantType := data.Type
				if wantType == "" {
					wantType = ledger.TypeAward // the default
				}
				if tx.Type != wantType {
					t.Errorf("failed! transaction_type = %v; want %v", tx.Type, wantType)
				}
				if tx.Timestamp.IsZero() {
					t.Error("failed! missing timestamp")
				}

				// the stored balance moves in step with the ledger
				wantBalance += data.Amount
				refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if refreshed.ParasStones != wantBalance {
					t.Errorf("failed! parasStones = %v; want %v", refreshed.ParasStones, wantBalance)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
