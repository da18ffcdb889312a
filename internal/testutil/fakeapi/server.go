// Package fakeapi is an in-memory stand-in for the church-administration
// backend, served over httptest. Tests seed churches, members and tithes,
// then drive the real HTTP client against it.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/common"
)

// Request is one call received by the server.
type Request struct {
	Method    string
	Path      string
	Tenant    string
	RequestID string
}

type account struct {
	id        string
	name      string
	email     string
	password  string
	verified  bool
	code      string
	resetCode string
}

type tenantData struct {
	members  []models.Member
	tithes   []models.Tithe
	notices  []models.Notice
	outflows map[[2]int]models.Money
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account
	data     map[string]*tenantData
	requests []Request
	failures map[string]failure
	holds    map[string]chan struct{}
	codes    int
}

// New starts a server and stops it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: map[string]*account{},
		data:     map[string]*tenantData{},
		failures: map[string]failure{},
		holds:    map[string]chan struct{}{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record)

	e.POST("/cadastrar", s.register)
	e.POST("/login", s.login)
	e.POST("/confirmar", s.confirm)
	e.POST("/solicitar-reset", s.requestReset)
	e.POST("/redefinir-senha", s.resetPassword)

	api := e.Group("/api", s.requireTenant)
	api.GET("/users", s.listMembers)
	api.POST("/users", s.createMember)
	api.PUT("/users/:id", s.updateMember)
	api.DELETE("/users/:id", s.deleteMember)
	api.GET("/users/:id/carta", s.letter)
	api.GET("/dizimos", s.listTithes)
	api.POST("/dizimos", s.createTithe)
	api.DELETE("/dizimos/:id", s.deleteTithe)
	api.GET("/dizimos/resumo/mensal/:ano", s.monthly)
	api.GET("/dizimos/resumo/anual/:ano", s.annual)

	avisos := e.Group("/avisos", s.requireTenant)
	avisos.GET("", s.listNotices)
	avisos.POST("", s.createNotice)
	avisos.PUT("/:id", s.updateNotice)
	avisos.DELETE("/:id", s.deleteNotice)

	return e
}

// ---------- test controls ----------

// AddChurch creates an account directly and returns its tenant id.
func (s *Server) AddChurch(name, email, password string, verified bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.newAccountLocked(name, email, password)
	acc.verified = verified
	return acc.id
}

// CodeFor returns the verification code mailed to email.
func (s *Server) CodeFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.byEmailLocked(email); acc != nil {
		return acc.code
	}
	return ""
}

// ResetCodeFor returns the password-reset code mailed to email.
func (s *Server) ResetCodeFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.byEmailLocked(email); acc != nil {
		return acc.resetCode
	}
	return ""
}

func (s *Server) SeedMember(tenant string, m models.Member) models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Church = tenant
	d := s.tenantLocked(tenant)
	d.members = append(d.members, m)
	return m
}

func (s *Server) SeedTithe(tenant string, t models.Tithe) models.Tithe {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	d := s.tenantLocked(tenant)
	d.tithes = append(d.tithes, t)
	return t
}

func (s *Server) SeedNotice(tenant string, n models.Notice) models.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	d := s.tenantLocked(tenant)
	d.notices = append(d.notices, n)
	return n
}

// SeedOutflow sets the outflow reported for a month.
func (s *Server) SeedOutflow(tenant string, year, month int, amount models.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantLocked(tenant).outflows[[2]int{year, month}] = amount
}

// Tithes returns what the server currently stores for tenant.
func (s *Server) Tithes(tenant string) []models.Tithe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Tithe(nil), s.tenantLocked(tenant).tithes...)
}

func (s *Server) Members(tenant string) []models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Member(nil), s.tenantLocked(tenant).members...)
}

// Fail makes the next request to path answer with status and message.
func (s *Server) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, message: message}
}

// Hold parks requests to path until the returned release func is called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ---------- middleware ----------

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		path := req.URL.Path

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    req.Method,
			Path:      path,
			Tenant:    req.Header.Get(common.TenantHeaderName),
			RequestID: req.Header.Get(common.RequestIDHeaderName),
		})
		f, failing := s.failures[path]
		delete(s.failures, path)
		hold := s.holds[path]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-req.Context().Done():
				return req.Context().Err()
			}
		}
		if failing {
			return c.JSON(f.status, echo.Map{"message": f.message})
		}
		return next(c)
	}
}

func (s *Server) requireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(common.TenantHeaderName)
		s.mu.Lock()
		acc, ok := s.accounts[id]
		s.mu.Unlock()
		if id == "" || !ok || !acc.verified {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Igreja não autorizada"})
		}
		c.Set("tenant", id)
		return next(c)
	}
}

func tenantOf(c echo.Context) string {
	id, _ := c.Get("tenant").(string)
	return id
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// ---------- identity ----------

func (s *Server) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}
	if req.Name == "" || req.Password == "" || !strings.Contains(req.Email, "@") {
		return message(c, http.StatusBadRequest, "Preencha nome, email válido e senha")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.email, req.Email) || strings.EqualFold(acc.name, req.Name) {
			return message(c, http.StatusConflict, "Igreja já cadastrada")
		}
	}
	acc := s.newAccountLocked(req.Name, req.Email, req.Password)
	return c.JSON(http.StatusCreated, models.RegisterResponse{TenantID: acc.id, Message: "Código enviado para o email"})
}

func (s *Server) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var acc *account
	for _, a := range s.accounts {
		if strings.EqualFold(a.name, req.Identifier) || strings.EqualFold(a.email, req.Identifier) {
			acc = a
			break
		}
	}
	if acc == nil || acc.password != req.Password {
		return message(c, http.StatusUnauthorized, "Credenciais inválidas")
	}
	if !acc.verified {
		return c.JSON(http.StatusOK, models.LoginResponse{FirstTime: true, Email: acc.email, Message: "Confirme o código enviado ao email"})
	}
	return c.JSON(http.StatusOK, models.LoginResponse{TenantID: acc.id})
}

func (s *Server) confirm(c echo.Context) error {
	var req models.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byEmailLocked(req.Email)
	if acc == nil {
		return message(c, http.StatusNotFound, "Igreja não encontrada")
	}
	if req.Code == "" || req.Code != acc.code {
		return message(c, http.StatusBadRequest, "Código inválido ou expirado")
	}
	acc.verified = true
	acc.code = ""
	return c.JSON(http.StatusOK, models.ConfirmResponse{TenantID: acc.id, Message: "Email confirmado com sucesso"})
}

func (s *Server) requestReset(c echo.Context) error {
	var req models.ResetRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byEmailLocked(req.Email)
	if acc == nil {
		return message(c, http.StatusNotFound, "Email não cadastrado")
	}
	acc.resetCode = s.nextCodeLocked()
	return message(c, http.StatusOK, "Código de redefinição enviado")
}

func (s *Server) resetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byEmailLocked(req.Email)
	if acc == nil || acc.resetCode == "" || acc.resetCode != req.Code {
		return message(c, http.StatusBadRequest, "Código inválido ou expirado")
	}
	if len(req.NewPassword) < 6 {
		return message(c, http.StatusBadRequest, "A senha deve ter pelo menos 6 caracteres")
	}
	acc.password = req.NewPassword
	acc.resetCode = ""
	return message(c, http.StatusOK, "Senha redefinida com sucesso")
}

// ---------- members ----------

func (s *Server) listMembers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Members(tenantOf(c)))
}

func (s *Server) createMember(c echo.Context) error {
	var m models.Member
	if err := c.Bind(&m); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}
	if m.Name == "" || m.NationalID == "" {
		return message(c, http.StatusBadRequest, "Nome e CPF são obrigatórios")
	}
	m.ID = ""
	return c.JSON(http.StatusCreated, s.SeedMember(tenantOf(c), m))
}

func (s *Server) updateMember(c echo.Context) error {
	var m models.Member
	if err := c.Bind(&m); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenantLocked(tenantOf(c))
	for i := range d.members {
		if d.members[i].ID == id {
			m.ID = id
			m.Church = tenantOf(c)
			d.members[i] = m
			return c.JSON(http.StatusOK, m)
		}
	}
	return message(c, http.StatusNotFound, "Membro não encontrado")
}

func (s *Server) deleteMember(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenantLocked(tenantOf(c))
	for i := range d.members {
		if d.members[i].ID == id {
			d.members = append(d.members[:i], d.members[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return message(c, http.StatusNotFound, "Membro não encontrado")
}

func (s *Server) letter(c echo.Context) error {
	id := c.Param("id")
	for _, m := range s.Members(tenantOf(c)) {
		if m.ID == id {
			return c.Blob(http.StatusOK, "application/pdf", []byte("%PDF-1.4\nCarta de recomendação: "+m.Name+"\n"))
		}
	}
	return message(c, http.StatusNotFound, "Membro não encontrado")
}

// ---------- tithes ----------

func (s *Server) listTithes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Tithes(tenantOf(c)))
}

func (s *Server) createTithe(c echo.Context) error {
	var t models.Tithe
	if err := c.Bind(&t); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}
	if t.Member == "" || t.Amount.Sign() <= 0 {
		return message(c, http.StatusBadRequest, "Dados do dízimo inválidos")
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	t.ID = ""
	return c.JSON(http.StatusCreated, s.SeedTithe(tenantOf(c), t))
}

func (s *Server) deleteTithe(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenantLocked(tenantOf(c))
	for i := range d.tithes {
		if d.tithes[i].ID == id {
			d.tithes = append(d.tithes[:i], d.tithes[i+1:]...)
			return message(c, http.StatusOK, "Dízimo removido")
		}
	}
	return message(c, http.StatusNotFound, "Dízimo não encontrado")
}

func (s *Server) monthly(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("ano"))
	if err != nil {
		return message(c, http.StatusBadRequest, "Ano inválido")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenantLocked(tenantOf(c))

	byMonth := map[int]*models.MonthlySummary{}
	get := func(month int) *models.MonthlySummary {
		if byMonth[month] == nil {
			byMonth[month] = &models.MonthlySummary{Month: month}
		}
		return byMonth[month]
	}
	for _, t := range d.tithes {
		if t.Date.Year() != year {
			continue
		}
		ms := get(int(t.Date.Month()))
		ms.Inflow = ms.Inflow.Add(t.Amount)
	}
	for key, amount := range d.outflows {
		if key[0] == year {
			get(key[1]).Outflow = amount
		}
	}

	out := []models.MonthlySummary{}
	for month := 1; month <= 12; month++ {
		if ms, ok := byMonth[month]; ok {
			out = append(out, *ms)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) annual(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("ano"))
	if err != nil {
		return message(c, http.StatusBadRequest, "Ano inválido")
	}

	var total models.Money
	for _, t := range s.Tithes(tenantOf(c)) {
		if t.Date.Year() == year {
			total = total.Add(t.Amount)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

// ---------- notices ----------

func (s *Server) listNotices(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, append([]models.Notice{}, s.tenantLocked(tenantOf(c)).notices...))
}

func (s *Server) createNotice(c echo.Context) error {
	var n models.Notice
	if err := c.Bind(&n); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}
	n.ID = ""
	return c.JSON(http.StatusCreated, s.SeedNotice(tenantOf(c), n))
}

func (s *Server) updateNotice(c echo.Context) error {
	var n models.Notice
	if err := c.Bind(&n); err != nil {
		return message(c, http.StatusBadRequest, "Requisição inválida")
	}
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenantLocked(tenantOf(c))
	for i := range d.notices {
		if d.notices[i].ID == id {
			n.ID = id
			d.notices[i] = n
			return c.JSON(http.StatusOK, n)
		}
	}
	return message(c, http.StatusNotFound, "Aviso não encontrado")
}

func (s *Server) deleteNotice(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.tenantLocked(tenantOf(c))
	for i := range d.notices {
		if d.notices[i].ID == id {
			d.notices = append(d.notices[:i], d.notices[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return message(c, http.StatusNotFound, "Aviso não encontrado")
}

// ---------- helpers (callers hold s.mu) ----------

func (s *Server) newAccountLocked(name, email, password string) *account {
	acc := &account{
		id:       uuid.NewString(),
		name:     name,
		email:    email,
		password: password,
		code:     s.nextCodeLocked(),
	}
	s.accounts[acc.id] = acc
	return acc
}

func (s *Server) nextCodeLocked() string {
	s.codes++
	return fmt.Sprintf("%06d", 482000+s.codes)
}

func (s *Server) byEmailLocked(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.email, email) {
			return a
		}
	}
	return nil
}

func (s *Server) tenantLocked(id string) *tenantData {
	d, ok := s.data[id]
	if !ok {
		d = &tenantData{outflows: map[[2]int]models.Money{}}
		s.data[id] = d
	}
	return d
}
