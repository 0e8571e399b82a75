package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/blog"
	"github.com/trezcool/baraza/core/user"
)

func createBlog(t *testing.T, author user.User, title, slug, category string, featured bool, publishedAt time.Time) blog.Blog {
	t.Helper()

	aid := author.ID
	b := blog.Blog{
		Title:       title,
		Slug:        slug,
		AuthorID:    &aid,
		Category:    category,
		Tags:        []string{},
		Excerpt:     title + " excerpt",
		Content:     title + " content",
		PublishedAt: publishedAt.UTC(),
		ReadTime:    5,
		Featured:    featured,
	}
	b, err := blogRepo.CreateBlog(context.Background(), b)
	if err != nil {
		t.Fatalf("CreateBlog(): %v", err)
	}
	return b
}

func renderBlog(b blog.Blog, author user.User) blog.Rendered {
	pub := author.Public()
	return blog.Rendered{Blog: b, Author: &pub}
}

func Test_blogApi_list(t *testing.T) {
	resetDB(t)

	author := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)

	now := time.Now().UTC()
	b1 := createBlog(t, author, "Entropy explained", "entropy-explained", "Physics", false, now.Add(-3*time.Hour))
	b2 := createBlog(t, author, "Benzene basics", "benzene-basics", "Chemistry", true, now.Add(-2*time.Hour))
	b3 := createBlog(t, author, "Spacetime primer", "spacetime-primer", "Physics", false, now.Add(-1*time.Hour))

	page := func(path string, p core.Pagination, count int, results ...blog.Rendered) []byte {
		if results == nil {
			results = []blog.Rendered{}
		}
		return marchallObj(t, core.NewPage(results, count, p, pageURL(t, path)))
	}
	defaultP := core.Pagination{Page: 1, PageSize: 10}

	tests := []httpTest{
		{
			name: "newest first", path: "/v1/blogs",
			wantData: page("/v1/blogs", defaultP, 3,
				renderBlog(b3, author), renderBlog(b2, author), renderBlog(b1, author)),
		},
		{
			name: "category filter is case-insensitive", path: "/v1/blogs?category=physics",
			wantData: page("/v1/blogs?category=physics", defaultP, 2,
				renderBlog(b3, author), renderBlog(b1, author)),
		},
		{
			name: "featured only", path: "/v1/blogs?featured=true",
			wantData: page("/v1/blogs?featured=true", defaultP, 1, renderBlog(b2, author)),
		},
		{
			name: "search matches content", path: "/v1/blogs?search=benzene",
			wantData: page("/v1/blogs?search=benzene", defaultP, 1, renderBlog(b2, author)),
		},
		{
			name: "search (unknown)", path: "/v1/blogs?search=lol",
			wantData: page("/v1/blogs?search=lol", defaultP, 0),
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

func Test_blogApi_retrieve(t *testing.T) {
	resetDB(t)

	author := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)
	b := createBlog(t, author, "Entropy explained", "entropy-explained", "Physics", false, time.Now().UTC())

	tests := []httpTest{
		{
			name: "found", path: "/v1/blogs/" + b.Slug, wantCode: http.StatusOK,
			wantData: marchallObj(t, renderBlog(b, author)),
		},
		{
			name: "unknown slug", path: "/v1/blogs/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "blog not found"}),
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

func Test_blogApi_create(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	teacher := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)
	teacherToken := getToken(t, teacher)
	reqMsg := "this field is required"

	type extra struct {
		wantSlug     string
		wantCategory string
	}
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "students cannot publish", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, blog.NewBlog{Title: "Lol", Excerpt: "e", Content: "c", ReadTime: 1}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: teacherToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, blog.NewBlog{}),
			wantData: marchallObj(t, map[string]string{
				"title":    reqMsg,
				"excerpt":  reqMsg,
				"content":  reqMsg,
				"readTime": reqMsg,
			}),
		},
		{
			name: "invalid category", token: teacherToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, blog.NewBlog{Title: "Lol", Category: "Alchemy", Excerpt: "e", Content: "c", ReadTime: 1}),
			wantData: marchallObj(t, map[string]string{"category": "invalid category"}),
		},
		{
			name: "created with default category", token: teacherToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, blog.NewBlog{Title: "Quantum Field Notes", Excerpt: "e", Content: "c", ReadTime: 7}),
			extra: extra{wantSlug: "quantum-field-notes", wantCategory: blog.DefaultCategory},
		},
		{
			name: "duplicate title gets a suffixed slug", token: teacherToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, blog.NewBlog{Title: "Quantum Field Notes", Category: "Physics", Excerpt: "e", Content: "c", ReadTime: 7}),
			extra: extra{wantSlug: "quantum-field-notes-1", wantCategory: "Physics"},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/blogs"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var rendered blog.Rendered
				if err := json.Unmarshal(rec.Body.Bytes(), &rendered); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				ex := tt.extra.(extra)
				if rendered.Slug != ex.wantSlug {
					t.Errorf("failed! slug = %v; want %v", rendered.Slug, ex.wantSlug)
				}
				if rendered.Category != ex.wantCategory {
					t.Errorf("failed! category = %v; want %v", rendered.Category, ex.wantCategory)
				}
				if rendered.Author == nil || rendered.Author.UID != teacher.ID {
					t.Errorf("failed! author = %+v; want uid %v", rendered.Author, teacher.ID)
				}
				if rendered.PublishedAt.IsZero() {
					t.Error("failed! missing publishedAt")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_blogApi_update(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	teacher := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)
	teacherToken := getToken(t, teacher)
	b := createBlog(t, teacher, "Entropy explained", "entropy-explained", "Physics", false, time.Now().UTC())

	featured := true
	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/blogs/" + b.Slug, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "students cannot edit", path: "/v1/blogs/" + b.Slug, token: getToken(t, student),
			body:     marchallObj(t, blog.UpdateBlog{Title: "Lol"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown slug", path: "/v1/blogs/lol", token: teacherToken,
			body:     marchallObj(t, blog.UpdateBlog{Title: "Lol"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "blog not found"}),
		},
		{
			name: "updated", path: "/v1/blogs/" + b.Slug, token: teacherToken, wantCode: http.StatusOK,
			body: marchallObj(t, blog.UpdateBlog{Title: "Entropy revisited", Featured: &featured}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var rendered blog.Rendered
				if err := json.Unmarshal(rec.Body.Bytes(), &rendered); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if rendered.Title != "Entropy revisited" {
					t.Errorf("failed! title = %v; want %v", rendered.Title, "Entropy revisited")
				}
				if !rendered.Featured {
					t.Error("failed! featured flag not updated")
				}
				// the slug is the identity; it never changes on update
				if rendered.Slug != b.Slug {
					t.Errorf("failed! slug = %v; want %v", rendered.Slug, b.Slug)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_blogApi_destroy(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "Stud", "herostud", "hero@test.cd", "", "", true)
	teacher := createUser(t, "Prof", "Oak", "profoak", "oak@test.cd", "", user.RoleTeacher, true)
	teacherToken := getToken(t, teacher)
	b := createBlog(t, teacher, "Entropy explained", "entropy-explained", "Physics", false, time.Now().UTC())

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/blogs/" + b.Slug, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "students cannot delete", path: "/v1/blogs/" + b.Slug, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown slug", path: "/v1/blogs/lol", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "blog not found"}),
		},
		{name: "deleted", path: "/v1/blogs/" + b.Slug, token: teacherToken, wantCode: http.StatusNoContent},
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
				if _, err := blogRepo.GetBlogBySlug(context.Background(), b.Slug); err != blog.ErrNotFound {
					t.Errorf("GetBlogBySlug() error = %v; want %v", err, blog.ErrNotFound)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_blogApi_categories(t *testing.T) {
	tt := httpTest{
		name: "public list of categories", method: http.MethodGet, path: "/v1/blogs/categories",
		wantCode: http.StatusOK, wantData: marchallObj(t, blog.Categories),
	}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newRequest(tt.method, tt.path, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
