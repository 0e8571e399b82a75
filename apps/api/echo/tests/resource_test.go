package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/resource"
	"github.com/trezcool/baraza/core/user"
)

func createResource(t *testing.T, title, category string, date time.Time) resource.Resource {
	t.Helper()

	res := resource.Resource{
		Title:       title,
		Category:    category,
		Description: title + " description",
		Link:        "https://resources.test.cd/" + core.Slugify(title),
		Date:        date.UTC(),
		Author:      "Prof. Oak",
	}
	res, err := resourceRepo.CreateResource(context.Background(), res)
	if err != nil {
		t.Fatalf("CreateResource(): %v", err)
	}
	return res
}

func Test_resourceApi_list(t *testing.T) {
	resetDB(t)

	day := 24 * time.Hour
	now := time.Now().UTC().Truncate(day)
	r1 := createResource(t, "Thermodynamics Notes", "notes", now.Add(-3*day))
	r2 := createResource(t, "Organic Chemistry Slides", "slides", now.Add(-2*day))
	r3 := createResource(t, "Linear Algebra Lecture", "video", now.Add(-day))

	page := func(path string, p core.Pagination, count int, results ...resource.Resource) []byte {
		if results == nil {
			results = []resource.Resource{}
		}
		return marchallObj(t, core.NewPage(results, count, p, pageURL(t, path)))
	}
	defaultP := core.Pagination{Page: 1, PageSize: 10}

	tests := []httpTest{
		{
			name: "newest first", path: "/v1/resources",
			wantData: page("/v1/resources", defaultP, 3, r3, r2, r1),
		},
		{
			name: "last page with previous link", path: "/v1/resources?page=2&page_size=2",
			wantData: page("/v1/resources?page=2&page_size=2", core.Pagination{Page: 2, PageSize: 2}, 3, r1),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_resourceApi_retrieve(t *testing.T) {
	resetDB(t)

	res := createResource(t, "Thermodynamics Notes", "notes", time.Now().UTC())

	tests := []httpTest{
		{
			name: "found", path: "/v1/resources/" + itoa(res.ID), wantCode: http.StatusOK,
			wantData: marchallObj(t, res),
		},
		{
			name: "unknown id", path: "/v1/resources/999", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "resource not found"}),
		},
		{
			name: "non-numeric id", path: "/v1/resources/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_resourceApi_create(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	teacher := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)
	teacherToken := getToken(t, teacher)
	reqMsg := "this field is required"

	type extra struct {
		wantCategory string
	}
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "students cannot publish", token: getToken(t, student), wantCode: http.StatusForbidden,
			body: marchallObj(t, resource.NewResource{
				Title: "Lol", Description: "d", Link: "https://test.cd/lol", Date: "2026-05-01", Author: "a",
			}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: teacherToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, resource.NewResource{}),
			wantData: marchallObj(t, map[string]string{
				"title":       reqMsg,
				"description": reqMsg,
				"link":        reqMsg,
				"date":        reqMsg,
				"author":      reqMsg,
			}),
		},
		{
			name: "invalid category", token: teacherToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, resource.NewResource{
				Title: "Lol", Category: "scrolls", Description: "d", Link: "https://test.cd/lol", Date: "2026-05-01", Author: "a",
			}),
			wantData: marchallObj(t, map[string]string{"category": "invalid category"}),
		},
		{
			name: "invalid link", token: teacherToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, resource.NewResource{
				Title: "Lol", Description: "d", Link: "lol", Date: "2026-05-01", Author: "a",
			}),
			wantData: marchallObj(t, map[string]string{"link": "link must be a valid URL"}),
		},
		{
			name: "created with default category", token: teacherToken, wantCode: http.StatusCreated,
			body: marchallObj(t, resource.NewResource{
				Title: "Thermodynamics Notes", Description: "d", Link: "https://test.cd/thermo", Date: "2026-05-01", Author: "Prof. Oak",
			}),
			extra: extra{wantCategory: resource.DefaultCategory},
		},
		{
			name: "created with explicit category", token: teacherToken, wantCode: http.StatusCreated,
			body: marchallObj(t, resource.NewResource{
				Title: "Linear Algebra Lecture", Category: "video", Description: "d", Link: "https://test.cd/la", Date: "2026-05-02", Author: "Prof. Oak",
			}),
			extra: extra{wantCategory: "video"},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/resources"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var res resource.Resource
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				ex := tt.extra.(extra)
				if res.Category != ex.wantCategory {
					t.Errorf("failed! category = %v; want %v", res.Category, ex.wantCategory)
				}
				if res.ID == 0 {
					t.Error("failed! missing id")
				}
				if res.Date.IsZero() {
					t.Error("failed! missing date")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_resourceApi_destroy(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	teacher := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)
	teacherToken := getToken(t, teacher)
	res := createResource(t, "Thermodynamics Notes", "notes", time.Now().UTC())

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/resources/" + itoa(res.ID), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "students cannot delete", path: "/v1/resources/" + itoa(res.ID), token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown id", path: "/v1/resources/999", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "resource not found"}),
		},
		{name: "deleted", path: "/v1/resources/" + itoa(res.ID), token: teacherToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				if _, err := resourceRepo.GetResourceByID(context.Background(), res.ID); err != resource.ErrNotFound {
					t.Errorf("GetResourceByID() error = %v; want %v", err, resource.ErrNotFound)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
