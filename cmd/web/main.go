package main

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "booker_session"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "BOOKER_WEB_PORT"
	envAPIURL   = "BOOKER_API_URL"
)

// session is the current user as returned by the API at login. It lives in a
// cookie from login until logout; there is no other client-side state.
type session struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/register", registerForm)
	r.Post("/register", registerSubmit(apiBase))
	r.Get("/logout", logout)

	// Member screens
	r.Group(func(r chi.Router) {
		r.Use(requireLogin)
		r.Get("/", redirectHome)
		r.Get("/books", booksList(apiBase))
		r.Post("/borrow/{id}", borrowBook(apiBase))
		r.Get("/history", historyList(apiBase))
		r.Post("/return/{id}", returnBook(apiBase))
	})

	// Admin screens
	r.Group(func(r chi.Router) {
		r.Use(requireLogin)
		r.Use(requireAdmin)
		r.Get("/admin/books", adminBooks(apiBase))
		r.Post("/admin/books", adminCreateBook(apiBase))
		r.Get("/admin/books/{id}/edit", adminEditBookForm(apiBase))
		r.Post("/admin/books/{id}/edit", adminUpdateBook(apiBase))
		r.Post("/admin/books/{id}/delete", adminDeleteBook(apiBase))
		r.Get("/admin/borrowed", adminBorrowed(apiBase))
		r.Get("/admin/members", adminMembers(apiBase))
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ==========================
// Session
// ==========================

func setSession(w http.ResponseWriter, s session) {
	data, _ := json.Marshal(s)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func getSession(r *http.Request) (session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return session{}, false
	}
	data, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return session{}, false
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil || s.ID == 0 {
		return session{}, false
	}
	return s, true
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
}

// requireLogin redirects to /login when no session cookie is present.
func requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getSession(r); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin sends members back to their home screen. The API itself does
// not enforce roles; the client gates the screens.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		if s.Role != "admin" {
			http.Redirect(w, r, "/books", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	s, _ := getSession(r)
	if s.Role == "admin" {
		http.Redirect(w, r, "/admin/books", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/books", http.StatusFound)
}

// ==========================
// Auth screens
// ==========================

func loginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := getSession(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", map[string]string{})
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Username and password are required"})
			return
		}

		body, _ := json.Marshal(map[string]string{"username": username, "password": password})
		data, status, err := apiPost(apiBase, "/login", body)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "login.html", map[string]string{"Error": apiErrorMessage(data)})
			return
		}

		var out struct {
			User session `json:"user"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.User.ID == 0 {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}

		setSession(w, out.User)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func registerForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "register.html", map[string]string{})
}

func registerSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(map[string]string{
			"username": strings.TrimSpace(r.FormValue("username")),
			"password": r.FormValue("password"),
		})
		data, status, err := apiPost(apiBase, "/register", body)
		if err != nil {
			renderTemplate(w, "register.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusCreated {
			renderTemplate(w, "register.html", map[string]string{"Error": apiErrorMessage(data)})
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ==========================
// Member screens
// ==========================

type bookView struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Quantity   int    `json:"quantity"`
	StatusText string `json:"status_text"`
}

func booksList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		data, status, err := apiGet(apiBase, "/books")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "books.html", map[string]interface{}{"User": s, "Error": fetchError(data, err)})
			return
		}
		var books []bookView
		_ = json.Unmarshal(data, &books)
		renderTemplate(w, "books.html", map[string]interface{}{
			"User":  s,
			"Books": books,
			"Error": r.URL.Query().Get("error"),
			"Info":  r.URL.Query().Get("info"),
		})
	}
}

func borrowBook(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		bookID := chi.URLParam(r, "id")
		body := []byte(fmt.Sprintf(`{"user_id":%d,"book_id":%s}`, s.ID, bookID))
		data, status, err := apiPost(apiBase, "/borrow", body)
		if err != nil {
			http.Redirect(w, r, "/books?error="+url.QueryEscape(err.Error()), http.StatusFound)
			return
		}
		if status != http.StatusCreated {
			// Server message shown verbatim, e.g. "Book out of stock"
			http.Redirect(w, r, "/books?error="+url.QueryEscape(apiErrorMessage(data)), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/books?info="+url.QueryEscape("Borrow successful"), http.StatusFound)
	}
}

type historyView struct {
	ID         int    `json:"id"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	Status     string `json:"status"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date"`
	CreatedAt  string `json:"created_at"`
}

func historyList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		data, status, err := apiGet(apiBase, fmt.Sprintf("/history/%d", s.ID))
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "history.html", map[string]interface{}{"User": s, "Error": fetchError(data, err)})
			return
		}
		var entries []historyView
		_ = json.Unmarshal(data, &entries)
		renderTemplate(w, "history.html", map[string]interface{}{
			"User":    s,
			"Entries": entries,
			"Error":   r.URL.Query().Get("error"),
			"Info":    r.URL.Query().Get("info"),
		})
	}
}

func returnBook(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txID := chi.URLParam(r, "id")
		body := []byte(fmt.Sprintf(`{"transaction_id":%s}`, txID))
		data, status, err := apiPost(apiBase, "/return", body)
		if err != nil {
			http.Redirect(w, r, "/history?error="+url.QueryEscape(err.Error()), http.StatusFound)
			return
		}
		if status != http.StatusOK {
			http.Redirect(w, r, "/history?error="+url.QueryEscape(apiErrorMessage(data)), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/history?info="+url.QueryEscape("Return successful"), http.StatusFound)
	}
}

// ==========================
// Admin screens
// ==========================

func adminBooks(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		data, status, err := apiGet(apiBase, "/books")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "admin_books.html", map[string]interface{}{"User": s, "Error": fetchError(data, err)})
			return
		}
		var books []bookView
		_ = json.Unmarshal(data, &books)
		renderTemplate(w, "admin_books.html", map[string]interface{}{
			"User":  s,
			"Books": books,
			"Error": r.URL.Query().Get("error"),
		})
	}
}

func adminCreateBook(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(map[string]interface{}{
			"title":    strings.TrimSpace(r.FormValue("title")),
			"author":   strings.TrimSpace(r.FormValue("author")),
			"quantity": atoiOrZero(r.FormValue("quantity")),
		})
		data, status, err := apiPost(apiBase, "/books", body)
		if err != nil || status != http.StatusCreated {
			http.Redirect(w, r, "/admin/books?error="+url.QueryEscape(fetchError(data, err)), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/admin/books", http.StatusFound)
	}
}

func adminEditBookForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		id := chi.URLParam(r, "id")
		data, status, err := apiGet(apiBase, "/books")
		if err != nil || status != http.StatusOK {
			http.Redirect(w, r, "/admin/books?error="+url.QueryEscape(fetchError(data, err)), http.StatusFound)
			return
		}
		var books []bookView
		_ = json.Unmarshal(data, &books)
		for _, b := range books {
			if fmt.Sprint(b.ID) == id {
				renderTemplate(w, "book_edit.html", map[string]interface{}{"User": s, "Book": b})
				return
			}
		}
		http.Redirect(w, r, "/admin/books?error="+url.QueryEscape("Book not found"), http.StatusFound)
	}
}

func adminUpdateBook(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")
		body, _ := json.Marshal(map[string]interface{}{
			"title":    strings.TrimSpace(r.FormValue("title")),
			"author":   strings.TrimSpace(r.FormValue("author")),
			"quantity": atoiOrZero(r.FormValue("quantity")),
		})
		data, status, err := apiPut(apiBase, "/books/"+id, body)
		if err != nil || status != http.StatusOK {
			http.Redirect(w, r, "/admin/books?error="+url.QueryEscape(fetchError(data, err)), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/admin/books", http.StatusFound)
	}
}

func adminDeleteBook(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, status, err := apiDelete(apiBase, "/books/"+id)
		if err != nil || status != http.StatusOK {
			http.Redirect(w, r, "/admin/books?error="+url.QueryEscape(fetchError(data, err)), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/admin/books", http.StatusFound)
	}
}

type borrowedView struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	DueDate    string `json:"due_date"`
	CreatedAt  string `json:"created_at"`
}

func adminBorrowed(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		data, status, err := apiGet(apiBase, "/admin/borrowed-books")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "borrowed.html", map[string]interface{}{"User": s, "Error": fetchError(data, err)})
			return
		}
		var entries []borrowedView
		_ = json.Unmarshal(data, &entries)
		renderTemplate(w, "borrowed.html", map[string]interface{}{"User": s, "Entries": entries})
	}
}

type memberView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func adminMembers(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := getSession(r)
		data, status, err := apiGet(apiBase, "/users")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "members.html", map[string]interface{}{"User": s, "Error": fetchError(data, err)})
			return
		}
		var members []memberView
		_ = json.Unmarshal(data, &members)
		renderTemplate(w, "members.html", map[string]interface{}{"User": s, "Members": members})
	}
}

// ==========================
// API helpers
// ==========================

func apiGet(apiBase, path string) ([]byte, int, error) {
	resp, err := http.Get(apiBase + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func apiPost(apiBase, path string, body []byte) ([]byte, int, error) {
	resp, err := http.Post(apiBase+path, "application/json", strings.NewReader(string(body)))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func apiPut(apiBase, path string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest("PUT", apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func apiDelete(apiBase, path string) ([]byte, int, error) {
	req, _ := http.NewRequest("DELETE", apiBase+path, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiErrorMessage extracts the "error" field from an API response body,
// falling back to the raw body.
func apiErrorMessage(data []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &errResp)
	if errResp.Error != "" {
		return errResp.Error
	}
	return string(data)
}

func fetchError(data []byte, err error) string {
	if err != nil {
		return "Cannot reach API: " + err.Error()
	}
	return apiErrorMessage(data)
}

func atoiOrZero(s string) int {
	n := 0
	fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	return n
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	tmpl, err := template.ParseFS(templatesFS, "templates/"+name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}
