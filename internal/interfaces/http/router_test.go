package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	"github.com/jhoicas/estoque-cd/internal/application/auth"
	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/application/ordering"
	"github.com/jhoicas/estoque-cd/internal/application/reconciliation"
	"github.com/jhoicas/estoque-cd/internal/application/retry"
	"github.com/jhoicas/estoque-cd/internal/application/stock"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/metrics"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/estoque-cd/internal/interfaces/http"
)

const testStore = "MDC - Carioca"

type RouterSuite struct {
	suite.Suite
	app     *fiber.App
	metrics *metrics.Metrics
	admin   string
	cd      string
	store   string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	st := memory.NewSeeded()
	repos := st.Repos()
	rp := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	s.metrics = metrics.New()

	authUC := auth.NewAuthUseCase(st.Users(), repos.Registry, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	_, err := authUC.EnsureAdmin(ctx, "admin", "admin-password")
	s.Require().NoError(err)

	s.app = fiber.New()
	apphttp.Router(s.app, apphttp.RouterDeps{
		AuthUC:    authUC,
		Catalog:   catalog.NewService(st, repos.Products, repos.Registry, rp, nil),
		Stock:     stock.NewService(repos.Stock, repos.Products, 10),
		Orders:    ordering.NewService(st, repos.Orders, rp, nil),
		Policy:    reconciliation.NewPolicy(st, repos, reconciliation.Config{AllowNegativeStock: true}, rp, s.metrics, nil),
		Receipts:  pdf.NewReceiptGenerator(),
		Issuer:    "MDC - CD",
		Metrics:   s.metrics,
		JWTSecret: testJWTSecret,
	})

	s.admin = s.login("admin", "admin-password")
	s.createUser(dto.CreateUserRequest{Username: "cd1", Password: "cd-password", Role: "cd"})
	s.createUser(dto.CreateUserRequest{Username: "loja1", Password: "loja-password", Role: "store", Store: testStore})
	s.cd = s.login("cd1", "cd-password")
	s.store = s.login("loja1", "loja-password")
}

func (s *RouterSuite) do(method, path, token string, body any) (*http.Response, []byte) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, out
}

func (s *RouterSuite) decode(raw []byte, v any) {
	s.Require().NoError(json.Unmarshal(raw, v), string(raw))
}

func (s *RouterSuite) login(username, password string) string {
	resp, body := s.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	s.decode(body, &out)
	return out.Token
}

func (s *RouterSuite) createUser(in dto.CreateUserRequest) {
	resp, body := s.do(http.MethodPost, "/api/users", s.admin, in)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))
}

// submitOne crea un pedido de tienda con un producto nuevo y devuelve (pedido, producto).
func (s *RouterSuite) submitOne(qty int) (string, string) {
	resp, body := s.do(http.MethodPost, "/api/orders", s.store, dto.SubmitCartRequest{
		Store: "MDC - Madureira",
		Items: []dto.CartItemRequest{{EAN: "7891000100103", Name: "Caneta azul", Sector: "Papelaria", Quantity: qty}},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))
	var out dto.SubmitCartResponse
	s.decode(body, &out)
	s.Require().Len(out.OrderIDs, 1)

	resp, body = s.do(http.MethodGet, "/api/orders/"+out.OrderIDs[0], s.cd, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var o dto.OrderResponse
	s.decode(body, &o)
	return o.ID, o.ProductID
}

func (s *RouterSuite) TestLogin_PasswordIncorrecto() {
	resp, body := s.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "nope"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Contains(string(body), "UNAUTHORIZED")
}

func (s *RouterSuite) TestLogin_SinCampos_Retorna400() {
	resp, body := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(string(body), "password")
}

func (s *RouterSuite) TestUsers_DuplicadoYPermisos() {
	resp, body := s.do(http.MethodPost, "/api/users", s.admin, dto.CreateUserRequest{Username: "cd1", Password: "another-pass", Role: "cd"})
	s.Equal(http.StatusConflict, resp.StatusCode, string(body))

	resp, _ = s.do(http.MethodPost, "/api/users", s.cd, dto.CreateUserRequest{Username: "x", Password: "another-pass", Role: "cd"})
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/api/users", s.admin, dto.CreateUserRequest{Username: "loja9", Password: "another-pass", Role: "store", Store: "Loja Fantasma"})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(string(body), "UNKNOWN_UNIT")
}

func (s *RouterSuite) TestDeactivate_InvalidaTokenEmitido() {
	resp, body := s.do(http.MethodGet, "/api/orders", s.cd, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, "/api/users", s.admin, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var users []dto.UserResponse
	s.decode(body, &users)
	var cdID string
	for _, u := range users {
		if u.Username == "cd1" {
			cdID = u.ID
		}
	}
	s.Require().NotEmpty(cdID)

	resp, body = s.do(http.MethodDelete, "/api/users/"+cdID, s.admin, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, "/api/orders", s.cd, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Contains(string(body), "USER_INACTIVE")

	resp, _ = s.do(http.MethodGet, "/api/orders", s.store, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestRegistry() {
	resp, body := s.do(http.MethodGet, "/api/sectors", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var sectors []dto.NamedResponse
	s.decode(body, &sectors)
	s.Len(sectors, 15)

	resp, body = s.do(http.MethodGet, "/api/units", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var units []dto.NamedResponse
	s.decode(body, &units)
	s.Len(units, 7)
}

func (s *RouterSuite) TestResolve_CreaYLuegoResuelve() {
	in := dto.ResolveProductRequest{EAN: "789", Reference: "REF-1", Name: "Fita", Sector: "Papelaria"}
	resp, body := s.do(http.MethodPost, "/api/products/resolve", s.cd, in)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))
	var first dto.ResolveProductResponse
	s.decode(body, &first)
	s.True(first.Created)

	resp, body = s.do(http.MethodPost, "/api/products/resolve", s.cd, dto.ResolveProductRequest{Reference: "REF-1", Name: "Fita", Sector: "Papelaria"})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var second dto.ResolveProductResponse
	s.decode(body, &second)
	s.False(second.Created)
	s.Equal(first.ProductID, second.ProductID)

	resp, body = s.do(http.MethodGet, "/api/products?sector=Papelaria", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var products []dto.ProductStockResponse
	s.decode(body, &products)
	s.Require().Len(products, 1)
	s.Equal(0, products[0].Quantity)
}

func (s *RouterSuite) TestResolve_IdentidadAmbigua_Retorna409() {
	s.do(http.MethodPost, "/api/products/resolve", s.cd, dto.ResolveProductRequest{EAN: "111", Name: "A", Sector: "Geral"})
	s.do(http.MethodPost, "/api/products/resolve", s.cd, dto.ResolveProductRequest{Reference: "R-2", Name: "B", Sector: "Geral"})

	resp, body := s.do(http.MethodPost, "/api/products/resolve", s.cd, dto.ResolveProductRequest{EAN: "111", Reference: "R-2", Name: "C", Sector: "Geral"})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Contains(string(body), "IDENTITY_CONFLICT")
}

func (s *RouterSuite) TestSubmit_TiendaPideParaSuPropiaTienda() {
	orderID, _ := s.submitOne(5)

	resp, body := s.do(http.MethodGet, "/api/orders/"+orderID, s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var o dto.OrderResponse
	s.decode(body, &o)
	s.Equal(testStore, o.Store)
	s.Equal("loja1", o.RequestedBy)
	s.Equal("Pending", o.Status)
	s.Equal(5, o.PendingQuantity)
	s.Equal("Caneta azul", o.ProductName)

	resp, body = s.do(http.MethodGet, "/api/orders", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list []dto.OrderResponse
	s.decode(body, &list)
	s.Len(list, 1)

	resp, body = s.do(http.MethodGet, "/api/orders?store=MDC%20-%20Madureira", s.cd, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(body, &list)
	s.Empty(list)
}

func (s *RouterSuite) TestSubmit_CarritoVacio_Retorna400() {
	resp, body := s.do(http.MethodPost, "/api/orders", s.store, dto.SubmitCartRequest{})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(string(body), "VALIDATION")
}

func (s *RouterSuite) TestFulfill_ParcialExcesoYRepeticion() {
	orderID, productID := s.submitOne(10)

	resp, body := s.do(http.MethodPost, "/api/entries", s.cd, dto.RecordEntryRequest{Supplier: "Fornecedor", ProductID: productID, Quantity: 20})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", s.cd, dto.FulfillOrderRequest{Quantity: 4, RequestID: "req-1"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))
	var res dto.FulfillOrderResponse
	s.decode(body, &res)
	s.Equal("Partial", res.Order.Status)
	s.Equal(6, res.Order.PendingQuantity)
	s.Equal(16, res.Stock)
	s.Equal("cd1", res.Fulfillment.FulfilledBy)

	resp, body = s.do(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", s.cd, dto.FulfillOrderRequest{Quantity: 4, RequestID: "req-1"})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	s.decode(body, &res)
	s.True(res.Replayed)
	s.Equal(6, res.Order.PendingQuantity)

	resp, body = s.do(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", s.cd, dto.FulfillOrderRequest{Quantity: 7})
	s.Require().Equal(http.StatusConflict, resp.StatusCode)
	var er dto.ErrorResponse
	s.decode(body, &er)
	s.Equal("EXCEEDS_PENDING", er.Code)
	s.Require().NotNil(er.MaxAllowed)
	s.Equal(6, *er.MaxAllowed)
	s.Contains(er.Message, "máximo permitido = 6")

	resp, body = s.do(http.MethodGet, "/api/orders/"+orderID+"/fulfillments", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var history []dto.FulfillmentResponse
	s.decode(body, &history)
	s.Len(history, 1)

	resp, body = s.do(http.MethodGet, "/api/stock/"+productID, s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var st dto.StockResponse
	s.decode(body, &st)
	s.Equal(16, st.Quantity)

	resp, body = s.do(http.MethodGet, "/api/stock/"+productID+"/audit", s.cd, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var audit dto.AuditResponse
	s.decode(body, &audit)
	s.True(audit.Balanced)
	s.Equal(4, audit.Fulfilled)
}

func (s *RouterSuite) TestFulfill_IdempotencyKeyHeader() {
	orderID, _ := s.submitOne(3)
	raw := `{"quantity":1}`
	for i, want := range []int{http.StatusCreated, http.StatusOK} {
		req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cd)
		req.Header.Set("Idempotency-Key", "key-1")
		resp, err := s.app.Test(req, -1)
		s.Require().NoError(err)
		resp.Body.Close()
		s.Equal(want, resp.StatusCode, "intento %d", i)
	}
}

func (s *RouterSuite) TestFulfill_TiendaNoPuedeAtender() {
	orderID, _ := s.submitOne(3)
	resp, _ := s.do(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", s.store, dto.FulfillOrderRequest{Quantity: 1})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestFulfill_CantidadInvalida() {
	orderID, _ := s.submitOne(3)
	resp, body := s.do(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", s.cd, dto.FulfillOrderRequest{Quantity: 0})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(string(body), "INVALID_QUANTITY")
}

func (s *RouterSuite) TestCancel_YLuegoNoAcepta() {
	orderID, _ := s.submitOne(3)
	resp, body := s.do(http.MethodPost, "/api/orders/"+orderID+"/cancel", s.cd, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var o dto.OrderResponse
	s.decode(body, &o)
	s.Equal("Cancelled", o.Status)

	resp, body = s.do(http.MethodPost, "/api/orders/"+orderID+"/fulfillments", s.cd, dto.FulfillOrderRequest{Quantity: 1})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(string(body), "ORDER_CANCELLED")
}

func (s *RouterSuite) TestPedidoInexistente_Retorna404() {
	resp, body := s.do(http.MethodGet, "/api/orders/00000000-0000-0000-0000-000000000099", s.cd, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(string(body), "NOT_FOUND")
}

func (s *RouterSuite) TestDispatch_UnidadDesconocida() {
	_, productID := s.submitOne(1)
	resp, body := s.do(http.MethodPost, "/api/dispatches", s.cd, dto.RecordDispatchRequest{Unit: "Loja X", ProductID: productID, Quantity: 1})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(string(body), "UNKNOWN_UNIT")

	resp, body = s.do(http.MethodPost, "/api/dispatches", s.cd, dto.RecordDispatchRequest{Unit: "MDC - Bonsucesso", ProductID: productID, Quantity: 2})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, "/api/stock", s.cd, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var all []dto.ProductStockResponse
	s.decode(body, &all)
	s.Require().Len(all, 1)
	s.Equal(-2, all[0].Quantity)

	resp, body = s.do(http.MethodGet, "/api/stock/available", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var avail []dto.ProductStockResponse
	s.decode(body, &avail)
	s.Empty(avail)
}

func (s *RouterSuite) TestReceipt_PDF() {
	orderID, _ := s.submitOne(2)
	resp, body := s.do(http.MethodGet, "/api/orders/"+orderID+"/receipt", s.store, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	s.True(bytes.HasPrefix(body, []byte("%PDF")))
}

func (s *RouterSuite) TestMetrics_Expuestas() {
	s.do(http.MethodGet, "/api/sectors", s.store, nil)
	resp, body := s.do(http.MethodGet, "/metrics", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `estoque_http_requests_total{method="GET",path="/api/sectors",status="200"}`)
}
