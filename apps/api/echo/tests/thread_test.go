package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/thread"
	"github.com/trezcool/baraza/core/user"
)

func Test_threadApi_list(t *testing.T) {
	resetDB(t)

	author := createUser(t, "Awe", "Dem", "awe", "awe@test.cd", "", "", true)
	other := createUser(t, "King", "Sol", "kingsol", "king@test.cd", "", "", true)

	now := time.Now().UTC()
	root1 := createThread(t, author, "Entropy always wins", "Physics", nil, now.Add(-3*time.Hour))
	root2 := createThread(t, other, "Benzene ring resonance", "Chemistry", nil, now.Add(-2*time.Hour))
	root3 := createThread(t, author, "Quantum tunneling", "Physics", nil, now.Add(-1*time.Hour))

	re1 := createThread(t, author, "Re: Benzene 1", "", &root2.ID, now.Add(-90*time.Minute))
	re2 := createThread(t, other, "Re: Benzene 2", "", &root2.ID, now.Add(-80*time.Minute))
	createThread(t, author, "Re: Re: Benzene", "", &re1.ID, now.Add(-70*time.Minute)) // nested; never inlined

	page := func(path string, p core.Pagination, count int, results ...thread.Summary) []byte {
		if results == nil {
			results = []thread.Summary{}
		}
		return marchallObj(t, core.NewPage(results, count, p, pageURL(t, path)))
	}
	defaultP := core.Pagination{Page: 1, PageSize: 10}

	tests := []httpTest{
		{
			name: "roots only, newest first", path: "/v1/threads",
			wantData: page("/v1/threads", defaultP, 3,
				summarize(root3, author, 0), summarize(root2, other, 2), summarize(root1, author, 0)),
		},
		{
			name: "first page with next link", path: "/v1/threads?page=1&page_size=2",
			wantData: page("/v1/threads?page=1&page_size=2", core.Pagination{Page: 1, PageSize: 2}, 3,
				summarize(root3, author, 0), summarize(root2, other, 2)),
		},
		{
			name: "last page with previous link", path: "/v1/threads?page=2&page_size=2",
			wantData: page("/v1/threads?page=2&page_size=2", core.Pagination{Page: 2, PageSize: 2}, 3,
				summarize(root1, author, 0)),
		},
		{
			name: "category filter is case-insensitive", path: "/v1/threads?category=physics",
			wantData: page("/v1/threads?category=physics", defaultP, 2,
				summarize(root3, author, 0), summarize(root1, author, 0)),
		},
		{
			name: "subject param is an alias", path: "/v1/threads?subject=Chemistry",
			wantData: page("/v1/threads?subject=Chemistry", defaultP, 1, summarize(root2, other, 2)),
		},
		{
			name: "category all disables the filter", path: "/v1/threads?category=all",
			wantData: page("/v1/threads?category=all", defaultP, 3,
				summarize(root3, author, 0), summarize(root2, other, 2), summarize(root1, author, 0)),
		},
		{
			name: "search", path: "/v1/threads?search=benzene",
			wantData: page("/v1/threads?search=benzene", defaultP, 1, summarize(root2, other, 2)),
		},
		{
			name: "search (unknown)", path: "/v1/threads?search=lol",
			wantData: page("/v1/threads?search=lol", defaultP, 0),
		},
		{
			name: "replies oldest first", path: "/v1/threads?parent_thread=" + itoa(root2.ID),
			wantData: page("/v1/threads?parent_thread="+itoa(root2.ID), defaultP, 2,
				summarize(re1, author, 1), summarize(re2, other, 0)),
		},
		{
			name: "unknown parent yields an empty page", path: "/v1/threads?parent_thread=999",
			wantData: page("/v1/threads?parent_thread=999", defaultP, 0),
		},
		{
			name: "invalid parent", path: "/v1/threads?parent_thread=lol", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"parent_thread": "invalid thread id"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_threadApi_retrieve(t *testing.T) {
	resetDB(t)

	author := createUser(t, "Awe", "Dem", "awe", "awe@test.cd", "", "", true)

	now := time.Now().UTC()
	root := createThread(t, author, "Root", "Physics", nil, now.Add(-time.Hour))
	re1 := createThread(t, author, "Re: 1", "", &root.ID, now.Add(-30*time.Minute))
	re2 := createThread(t, author, "Re: 2", "", &root.ID, now.Add(-20*time.Minute))
	createThread(t, author, "Re: Re: 1", "", &re1.ID, now.Add(-10*time.Minute))

	tests := []httpTest{
		{
			name: "detail with one level of replies", path: "/v1/threads/" + itoa(root.ID),
			wantData: marchallObj(t, thread.Detail{
				Summary: summarize(root, author, 2),
				Replies: []thread.Summary{summarize(re1, author, 1), summarize(re2, author, 0)},
			}),
		},
		{
			name: "leaf thread has an empty reply list", path: "/v1/threads/" + itoa(re2.ID),
			wantData: marchallObj(t, thread.Detail{Summary: summarize(re2, author, 0), Replies: []thread.Summary{}}),
		},
		{
			name: "unknown thread", path: "/v1/threads/999", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "thread not found"}),
		},
		{
			name: "non-numeric id", path: "/v1/threads/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_threadApi_create(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	naughty := createUser(t, "N", "Dog", "ndoggg", "ndog@test.cd", "", "", false)
	studentToken := getToken(t, student)

	root := createThread(t, student, "Root", "Physics", nil, time.Now().UTC().Add(-time.Hour))
	reqMsg := "this field is required"

	type extraTest struct {
		wantColor    string // empty: any palette color
		wantSubject  string
		wantParentID *int
	}
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			body:     marchallObj(t, thread.NewThread{Title: "T", Content: "C"}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, thread.NewThread{}),
			wantData: marchallObj(t, map[string]string{"title": reqMsg, "content": reqMsg}),
		},
		{
			name: "invalid color", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, thread.NewThread{Title: "T", Content: "C", Color: "#BADA55"}),
			wantData: marchallObj(t, map[string]string{"color": "color must be one of the theme palette values"}),
		},
		{
			name: "invalid subject", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, thread.NewThread{Title: "T", Content: "C", Subject: "Astrology"}),
			wantData: marchallObj(t, map[string]string{"subject": "invalid subject"}),
		},
		{
			name: "missing parent", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, thread.NewThread{Title: "T", Content: "C", ParentID: intPtr(999)}),
			wantData: marchallObj(t, map[string]string{"parent_thread": "parent thread not found"}),
		},
		{
			name: "created with a random palette color", token: studentToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, thread.NewThread{Title: "Hello", Content: "World"}),
			extra: extraTest{},
		},
		{
			name: "provided color is normalized", token: studentToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, thread.NewThread{Title: "Hello", Content: "World", Color: "#f43f5e", Subject: "physics"}),
			extra: extraTest{wantColor: thread.ColorRose, wantSubject: "Physics"},
		},
		{
			name: "reply created", token: studentToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, thread.NewThread{Title: "Re: Root", Content: "C", ParentID: &root.ID}),
			extra: extraTest{wantParentID: &root.ID},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/threads"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var sum thread.Summary
				if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if sum.ID == 0 {
					t.Error("failed! missing thread id")
				}
				if sum.User.UID != student.ID {
					t.Errorf("failed! author = %v; want %v", sum.User.UID, student.ID)
				}

				extra := tt.extra.(extraTest)
				if extra.wantColor != "" {
					if sum.Color != extra.wantColor {
						t.Errorf("failed! color = %v; want %v", sum.Color, extra.wantColor)
					}
				} else if !isPaletteColor(sum.Color) {
					t.Errorf("failed! color %v not in palette", sum.Color)
				}
				if extra.wantSubject != "" && sum.Subject != extra.wantSubject {
					t.Errorf("failed! subject = %v; want %v", sum.Subject, extra.wantSubject)
				}
				if extra.wantParentID != nil {
					if sum.ParentID == nil || *sum.ParentID != *extra.wantParentID {
						t.Errorf("failed! parent = %v; want %v", sum.ParentID, *extra.wantParentID)
					}
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_threadApi_destroy(t *testing.T) {
	resetDB(t)

	author := createUser(t, "Awe", "Dem", "awe", "awe@test.cd", "", "", true)
	other := createUser(t, "King", "Sol", "kingsol", "king@test.cd", "", "", true)
	admin := createUser(t, "Admin", "Boss", "adminboss", "admin@test.cd", "", user.RoleAdmin, true)

	now := time.Now().UTC()
	root := createThread(t, author, "Root", "", nil, now.Add(-time.Hour))
	re1 := createThread(t, author, "Re: 1", "", &root.ID, now.Add(-30*time.Minute))
	nested := createThread(t, other, "Re: Re: 1", "", &re1.ID, now.Add(-10*time.Minute))
	adminTarget := createThread(t, author, "Root 2", "", nil, now)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/threads/" + itoa(root.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "unknown thread", path: "/v1/threads/999", token: getToken(t, author), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "thread not found"}),
		},
		{
			name: "only the author or an admin", path: "/v1/threads/" + itoa(root.ID), token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "author deletes the whole subtree", path: "/v1/threads/" + itoa(root.ID), token: getToken(t, author), wantCode: http.StatusNoContent},
		{name: "admin can delete any thread", path: "/v1/threads/" + itoa(adminTarget.ID), token: getToken(t, admin), wantCode: http.StatusNoContent},
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
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// the cascade took the replies down with the root
	for _, id := range []int{root.ID, re1.ID, nested.ID} {
		if _, err := threadRepo.GetThreadByID(context.Background(), id); err != thread.ErrNotFound {
			t.Errorf("thread %d: err = %v; want %v", id, err, thread.ErrNotFound)
		}
	}
}

func Test_threadApi_colorsAndSubjects(t *testing.T) {
	tests := []httpTest{
		{name: "palette", path: "/v1/threads/colors", wantData: marchallObj(t, thread.Palette)},
		{name: "subjects", path: "/v1/threads/subjects", wantData: marchallObj(t, thread.Subjects)},
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

func isPaletteColor(val string) bool {
	for _, c := range thread.Palette {
		if c.Value == val {
			return true
		}
	}
	return false
}

func intPtr(i int) *int { return &i }
