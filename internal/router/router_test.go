package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/config"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository/memory"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/token"

	"github.com/rs/zerolog"
)

type api struct {
	t     *testing.T
	srv   *httptest.Server
	store *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	return newAPIWithPing(t, nil)
}

func newAPIWithPing(t *testing.T, ping func(context.Context) error) *api {
	t.Helper()
	store := memory.New()
	cfg := config.Defaults()
	cfg.RateLimit = 0
	tokens := token.NewService(cfg.SessionSecret)
	deps := Deps{Accounts: store.Accounts(), Tickets: store.Tickets(), Tokens: tokens, Ping: ping}

	auth := service.NewAuthService(deps.Accounts, tokens, cfg.TokenTTL, cfg.AdminTokenTTL)
	if _, err := auth.SeedAdmin(context.Background(), service.RegisterInput{Email: "admin@example.com", Name: "Admin", Password: "admin-pass"}); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(New(zerolog.New(io.Discard), deps, cfg))
	t.Cleanup(srv.Close)
	return &api{t: t, srv: srv, store: store}
}

// do sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil). It returns the status code.
func (a *api) do(method, path, tok string, body, out any) int {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	if err != nil {
		a.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		a.t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			a.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

type session struct {
	Token   string          `json:"token"`
	IsAdmin bool            `json:"isAdmin"`
	User    *models.Account `json:"user"`
}

func (a *api) register(email string) session {
	a.t.Helper()
	body := map[string]string{"email": email, "name": "Shopper", "password": "secret1"}
	if code := a.do(http.MethodPost, "/api/auth/register", "", body, nil); code != http.StatusCreated {
		a.t.Fatalf("register %s: %d", email, code)
	}
	var s session
	if code := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "secret1"}, &s); code != http.StatusOK {
		a.t.Fatalf("login %s: %d", email, code)
	}
	return s
}

func (a *api) adminLogin() session {
	a.t.Helper()
	var s session
	if code := a.do(http.MethodPost, "/api/admin/login", "", map[string]string{"email": "admin@example.com", "password": "admin-pass"}, &s); code != http.StatusOK {
		a.t.Fatalf("admin login: %d", code)
	}
	return s
}

func (a *api) createTicket(s session, subject string) string {
	a.t.Helper()
	var out struct {
		TicketID string `json:"ticketId"`
	}
	body := map[string]string{"userId": s.User.ID, "subject": subject, "description": "Item damaged"}
	if code := a.do(http.MethodPost, "/api/support?action=createTicket", s.Token, body, &out); code != http.StatusCreated {
		a.t.Fatalf("createTicket: %d", code)
	}
	return out.TicketID
}

func TestLoginSegregation(t *testing.T) {
	a := newAPI(t)
	a.register("ann@example.com")

	admin := a.adminLogin()
	if !admin.IsAdmin || admin.Token == "" {
		t.Errorf("admin session = %+v", admin)
	}
	creds := map[string]string{"email": "admin@example.com", "password": "admin-pass"}
	if code := a.do(http.MethodPost, "/api/auth/login", "", creds, nil); code != http.StatusForbidden {
		t.Errorf("admin via user login = %d, want 403", code)
	}
	creds = map[string]string{"email": "ann@example.com", "password": "secret1"}
	if code := a.do(http.MethodPost, "/api/admin/login", "", creds, nil); code != http.StatusUnauthorized {
		t.Errorf("user via admin login = %d, want 401", code)
	}
	creds["password"] = "wrong"
	if code := a.do(http.MethodPost, "/api/auth/login", "", creds, nil); code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	a := newAPI(t)
	a.register("ann@example.com")

	cases := map[string]map[string]string{
		"duplicate":      {"email": "ann@example.com", "name": "Ann", "password": "secret1"},
		"bad email":      {"email": "not-an-email", "name": "Ann", "password": "secret1"},
		"short password": {"email": "bob@example.com", "name": "Bob", "password": "123"},
		"no name":        {"email": "bob@example.com", "password": "secret1"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if code := a.do(http.MethodPost, "/api/auth/register", "", body, nil); code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400", code)
			}
		})
	}
}

func TestSupportRequiresToken(t *testing.T) {
	a := newAPI(t)
	if code := a.do(http.MethodGet, "/api/support?action=getTickets", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", code)
	}
	if code := a.do(http.MethodGet, "/api/support?action=getTickets", "garbage", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", code)
	}
}

func TestActionDispatch(t *testing.T) {
	a := newAPI(t)
	user := a.register("ann@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown action", http.MethodGet, "/api/support?action=dance", http.StatusBadRequest},
		{"no action", http.MethodGet, "/api/support", http.StatusBadRequest},
		{"wrong verb", http.MethodGet, "/api/support?action=createTicket", http.StatusMethodNotAllowed},
		{"wrong verb update", http.MethodPost, "/api/support?action=updateTicket", http.StatusMethodNotAllowed},
		{"alias", http.MethodGet, "/api/support/chatRoom?action=getChatRooms", http.StatusOK},
		{"alias tickets", http.MethodGet, "/api/support/tickets?action=getTickets", http.StatusOK},
		{"messages without id", http.MethodGet, "/api/support?action=getMessages", http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if code := a.do(c.method, c.path, user.Token, nil, nil); code != c.want {
				t.Errorf("code = %d, want %d", code, c.want)
			}
		})
	}
}

func TestPreflightAlwaysOK(t *testing.T) {
	a := newAPI(t)
	for _, p := range []string{"/api/support?action=createTicket", "/api/admin/support/tickets", "/nowhere"} {
		req, _ := http.NewRequest(http.MethodOptions, a.srv.URL+p, nil)
		req.Header.Set("Origin", "http://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Errorf("OPTIONS %s = %d, want 200", p, res.StatusCode)
		}
	}
}

func TestSendMessageWithoutMessageStoresNothing(t *testing.T) {
	a := newAPI(t)
	user := a.register("ann@example.com")
	id := a.createTicket(user, "Refund")

	body := map[string]string{"ticketId": id, "senderId": user.User.ID}
	if code := a.do(http.MethodPost, "/api/support?action=sendMessage", user.Token, body, nil); code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", code)
	}
	var msgs []models.Message
	a.do(http.MethodGet, "/api/support?action=getMessages&ticketId="+id, user.Token, nil, &msgs)
	if len(msgs) != 0 {
		t.Errorf("messages = %d, want 0", len(msgs))
	}
}

func TestSpoofedIdentityRejected(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com")
	bob := a.register("bob@example.com")
	id := a.createTicket(ann, "Refund")

	body := map[string]string{"userId": ann.User.ID, "subject": "s", "description": "d"}
	if code := a.do(http.MethodPost, "/api/support?action=createTicket", bob.Token, body, nil); code != http.StatusForbidden {
		t.Errorf("create for someone else = %d, want 403", code)
	}
	msg := map[string]string{"ticketId": id, "senderId": ann.User.ID, "message": "hi"}
	if code := a.do(http.MethodPost, "/api/support?action=sendMessage", bob.Token, msg, nil); code != http.StatusForbidden {
		t.Errorf("spoofed sender = %d, want 403", code)
	}
	if code := a.do(http.MethodGet, "/api/support?action=getTickets&userId="+ann.User.ID, bob.Token, nil, nil); code != http.StatusForbidden {
		t.Errorf("peek at other user = %d, want 403", code)
	}

	var mine []models.Ticket
	a.do(http.MethodGet, "/api/support?action=getTickets&isAdmin=true", bob.Token, nil, &mine)
	if len(mine) != 0 {
		t.Errorf("isAdmin=true leaked %d tickets", len(mine))
	}
	upd := map[string]string{"ticketId": id, "status": "closed"}
	if code := a.do(http.MethodPut, "/api/support?action=updateTicket", ann.Token, upd, nil); code != http.StatusForbidden {
		t.Errorf("owner update = %d, want 403", code)
	}
	if code := a.do(http.MethodGet, "/api/support?action=getMessages&ticketId="+id, bob.Token, nil, nil); code != http.StatusForbidden {
		t.Errorf("stranger messages = %d, want 403", code)
	}
}

func TestSupportConversation(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com")
	admin := a.adminLogin()
	id := a.createTicket(ann, "Refund")
	a.createTicket(ann, "Sizing")

	var sent struct {
		MessageID string `json:"messageId"`
	}
	msg := map[string]string{"ticketId": id, "senderId": ann.User.ID, "message": "Item arrived torn", "senderType": "admin"}
	if code := a.do(http.MethodPost, "/api/support?action=sendMessage", ann.Token, msg, &sent); code != http.StatusCreated || sent.MessageID == "" {
		t.Fatalf("sendMessage = %d, %+v", code, sent)
	}

	var reply models.Ticket
	if code := a.do(http.MethodPost, "/api/admin/support/tickets/"+id+"/messages", admin.Token, map[string]string{"content": "Refund approved"}, &reply); code != http.StatusCreated {
		t.Fatalf("admin reply = %d", code)
	}
	if reply.Owner == nil || reply.Owner.Email != "ann@example.com" {
		t.Errorf("owner = %+v", reply.Owner)
	}

	var upd struct {
		Ticket models.Ticket `json:"ticket"`
	}
	body := map[string]string{"ticketId": id, "status": "resolved", "adminResponse": "Refund issued"}
	if code := a.do(http.MethodPut, "/api/support?action=updateTicket", admin.Token, body, &upd); code != http.StatusOK {
		t.Fatalf("updateTicket = %d", code)
	}
	if upd.Ticket.Status != models.StatusResolved || upd.Ticket.AdminResponse != "Refund issued" {
		t.Errorf("ticket = %+v", upd.Ticket)
	}

	var msgs []models.Message
	a.do(http.MethodGet, "/api/support?action=getMessages&ticketId="+id, ann.Token, nil, &msgs)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].SenderType != models.RoleUser || msgs[1].SenderType != models.RoleAdmin {
		t.Errorf("sender types = %q, %q", msgs[0].SenderType, msgs[1].SenderType)
	}

	var resolved []models.Ticket
	a.do(http.MethodGet, "/api/support?action=getTickets&status=resolved", ann.Token, nil, &resolved)
	if len(resolved) != 1 || resolved[0].ID != id {
		t.Errorf("resolved = %+v", resolved)
	}
	var rooms []models.TicketSummary
	a.do(http.MethodGet, "/api/support?action=getChatRooms", ann.Token, nil, &rooms)
	if len(rooms) != 2 || rooms[0].Subject != "Sizing" {
		t.Errorf("rooms = %+v", rooms)
	}
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com")
	admin := a.adminLogin()
	id := a.createTicket(ann, "Refund")

	if code := a.do(http.MethodGet, "/api/admin/support/tickets", ann.Token, nil, nil); code != http.StatusForbidden {
		t.Errorf("user on admin list = %d, want 403", code)
	}
	if code := a.do(http.MethodGet, "/api/admin/support/tickets", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous admin list = %d, want 401", code)
	}

	var all []models.Ticket
	if code := a.do(http.MethodGet, "/api/admin/support/tickets?status=open", admin.Token, nil, &all); code != http.StatusOK || len(all) != 1 {
		t.Errorf("admin list = %d, %d tickets", code, len(all))
	}
	if code := a.do(http.MethodGet, "/api/admin/support/tickets/missing", admin.Token, nil, nil); code != http.StatusNotFound {
		t.Errorf("missing ticket = %d, want 404", code)
	}

	var patched models.Ticket
	patch := map[string]string{"priority": "high", "assignedTo": admin.User.ID}
	if code := a.do(http.MethodPatch, "/api/admin/support/tickets/"+id, admin.Token, patch, &patched); code != http.StatusOK {
		t.Fatalf("patch = %d", code)
	}
	if patched.Priority != models.PriorityHigh || patched.AssignedTo != admin.User.ID {
		t.Errorf("patched = %+v", patched)
	}
	if code := a.do(http.MethodPatch, "/api/admin/support/tickets/"+id, admin.Token, map[string]string{"status": "archived"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", code)
	}

	var st models.TicketStats
	if code := a.do(http.MethodGet, "/api/admin/support/summary", admin.Token, nil, &st); code != http.StatusOK {
		t.Fatalf("summary = %d", code)
	}
	if st.Total != 1 || st.Open != 1 || st.HighOpen != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestAccountsAndMe(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com")
	bob := a.register("bob@example.com")
	admin := a.adminLogin()

	var me models.Account
	if code := a.do(http.MethodGet, "/api/auth/me", ann.Token, nil, &me); code != http.StatusOK || me.ID != ann.User.ID {
		t.Errorf("me = %d, %+v", code, me)
	}

	path := "/api/accounts/" + ann.User.ID
	if code := a.do(http.MethodGet, path, ann.Token, nil, nil); code != http.StatusOK {
		t.Errorf("self = %d", code)
	}
	if code := a.do(http.MethodGet, path, admin.Token, nil, nil); code != http.StatusOK {
		t.Errorf("admin = %d", code)
	}
	if code := a.do(http.MethodGet, path, bob.Token, nil, nil); code != http.StatusForbidden {
		t.Errorf("other = %d, want 403", code)
	}
}

func TestHealthAndIndex(t *testing.T) {
	a := newAPI(t)
	for _, p := range []string{"/healthz", "/api/health", "/api"} {
		if code := a.do(http.MethodGet, p, "", nil, nil); code != http.StatusOK {
			t.Errorf("GET %s = %d", p, code)
		}
	}
}

func TestGetTicketsOnlyReturnsOwner(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com")
	bob := a.register("bob@example.com")
	a.createTicket(ann, "Refund")
	a.createTicket(bob, "Sizing")
	a.createTicket(bob, "Shipping")

	var got []models.Ticket
	path := "/api/support?action=getTickets&isAdmin=false&userId=" + ann.User.ID
	if code := a.do(http.MethodGet, path, ann.Token, nil, &got); code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if len(got) != 1 || got[0].UserID != ann.User.ID {
		t.Errorf("tickets = %+v", got)
	}
}

func TestCallerIdentityFieldsRequired(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com")
	id := a.createTicket(ann, "Refund")

	create := map[string]string{"subject": "Sizing", "description": "Too small"}
	if code := a.do(http.MethodPost, "/api/support?action=createTicket", ann.Token, create, nil); code != http.StatusBadRequest {
		t.Errorf("createTicket without userId = %d, want 400", code)
	}
	msg := map[string]string{"ticketId": id, "message": "hello"}
	if code := a.do(http.MethodPost, "/api/support?action=sendMessage", ann.Token, msg, nil); code != http.StatusBadRequest {
		t.Errorf("sendMessage without senderId = %d, want 400", code)
	}

	var rooms []models.TicketSummary
	a.do(http.MethodGet, "/api/support?action=getChatRooms", ann.Token, nil, &rooms)
	if len(rooms) != 1 {
		t.Errorf("rooms = %d, want 1", len(rooms))
	}
	var msgs []models.Message
	a.do(http.MethodGet, "/api/support?action=getMessages&ticketId="+id, ann.Token, nil, &msgs)
	if len(msgs) != 0 {
		t.Errorf("messages = %d, want 0", len(msgs))
	}
}

func TestHealthHidesStoreError(t *testing.T) {
	a := newAPIWithPing(t, func(context.Context) error {
		return errors.New("dial tcp 10.0.0.7:5432: connection refused")
	})
	for _, p := range []string{"/healthz", "/api/health"} {
		req, _ := http.NewRequest(http.MethodGet, a.srv.URL+p, nil)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		if res.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", p, res.StatusCode)
		}
		if strings.Contains(string(body), "10.0.0.7") || !strings.Contains(string(body), "degraded") {
			t.Errorf("GET %s body = %s", p, body)
		}
	}
}
