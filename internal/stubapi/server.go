// internal/stubapi/server.go
//
// In-memory implementation of the inventory API contract. It backs
// cmd/stub-backend for local runs and the httptest servers used in tests, so
// every status code the terminal classifies can be produced on demand.

package stubapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

// UserInfo is the profile returned by /api/User/UserInfo.
type UserInfo struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Roles    int    `json:"roles"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type productRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	CategoryID       int    `json:"categoryId"`
	ShelfLife        int    `json:"shelfLife"`
	Barcode          string `json:"barcode"`
	MinStockRequired int    `json:"minStockRequired"`
}

type batchRequest struct {
	ProductID   int `json:"productId"`
	WarehouseID int `json:"warehouseId"`
}

type stockRequest struct {
	ProductID   int  `json:"productId"`
	Amount      int  `json:"amount"`
	IsEntry     bool `json:"isEntry"`
	BatchID     *int `json:"batchId,omitempty"`
	WarehouseID *int `json:"warehouseId,omitempty"`
}

type warehouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

// Server holds the in-memory catalog.
type Server struct {
	mu         sync.Mutex
	engine     *gin.Engine
	clock      func() time.Time
	products   []inventory.Product
	batches    []inventory.Batch
	warehouses []inventory.Warehouse
	categories []inventory.Category
	user       UserInfo
	nextID     int
	failures   map[string]int
	calls      map[string]int
}

// Option customizes the stub.
type Option func(*Server)

// WithClock fixes batch entry dates in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithUser sets the profile served by the user info endpoint.
func WithUser(user UserInfo) Option {
	return func(s *Server) {
		s.user = user
	}
}

// New builds a stub with an empty catalog.
func New(opts ...Option) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		clock:    time.Now,
		user:     UserInfo{Name: "Operador", LastName: "Deposito", Roles: 3},
		nextID:   1,
		failures: map[string]int{},
		calls:    map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Seed loads a small demo catalog.
func (s *Server) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	central := s.addWarehouseLocked("Central", "Av. Corrientes 1234")
	s.addWarehouseLocked("Norte", "Ruta 8 km 50")
	food := s.addCategoryLocked("Alimentos")
	s.addCategoryLocked("Limpieza")
	yerba := s.addProductLocked(inventory.Product{
		Name:             "Yerba Mate 1kg",
		Description:      "Paquete de yerba con palo",
		CategoryID:       food.ID,
		Barcode:          "7790387000133",
		MinStockRequired: 10,
		ShelfLife:        inventory.ShelfLifeOneYear,
	})
	s.addBatchLocked(yerba.ID, central.ID, 24)
}

// AddProduct registers a product directly and returns it with its id.
func (s *Server) AddProduct(p inventory.Product) inventory.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addProductLocked(p)
}

// AddWarehouse registers a warehouse directly.
func (s *Server) AddWarehouse(name, address string) inventory.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addWarehouseLocked(name, address)
}

// AddCategory registers a category directly.
func (s *Server) AddCategory(name string) inventory.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCategoryLocked(name)
}

// AddBatch registers a batch directly.
func (s *Server) AddBatch(productID, warehouseID, stock int) inventory.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBatchLocked(productID, warehouseID, stock)
}

// Fail makes every call to method+route answer status until cleared with 0.
// Route uses gin syntax, for example "GET /api/Product/:barcode".
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Calls reports how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Batches returns a copy of the stored batches.
func (s *Server) Batches() []inventory.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.Batch, len(s.batches))
	copy(out, s.batches)
	return out
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.track())
	api := r.Group("/api")
	api.GET("/Product/Categories", s.listCategories)
	api.POST("/Product/Categories", s.createCategory)
	api.GET("/Product/:barcode", s.getProduct)
	api.POST("/Product", s.createProduct)
	api.GET("/Batch", s.getBatches)
	api.POST("/Batch", s.createBatch)
	api.PUT("/Stock", s.adjustStock)
	api.GET("/Warehouse", s.listWarehouses)
	api.POST("/Warehouse", s.createWarehouse)
	api.GET("/User/UserInfo", s.userInfo)
	return r
}

func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		s.calls[route]++
		status := s.failures[route]
		s.mu.Unlock()
		if status != 0 {
			c.AbortWithStatus(status)
			return
		}
		c.Next()
	}
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.Category, len(s.categories))
	copy(out, s.categories)
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldError{Field: "name", Message: err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 25 {
		c.JSON(http.StatusBadRequest, fieldError{Field: "name", Message: "El nombre no puede tener más de 25 caracteres."})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, name) {
			c.JSON(http.StatusConflict, fieldError{Field: "name", Message: "Ya existe una categoria con ese nombre."})
			return
		}
	}
	c.JSON(http.StatusOK, s.addCategoryLocked(name))
}

func (s *Server) getProduct(c *gin.Context) {
	code := c.Param("barcode")
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.productByBarcodeLocked(code); ok {
		c.JSON(http.StatusOK, p)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldError{Field: "name", Message: err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Barcode) == "" {
		c.JSON(http.StatusBadRequest, fieldError{Field: "name", Message: "name and barcode are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productByBarcodeLocked(req.Barcode); ok {
		c.JSON(http.StatusConflict, fieldError{Field: "barcode", Message: "Ya existe un producto con este codigo de barras."})
		return
	}
	p := s.addProductLocked(inventory.Product{
		Name:             req.Name,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		Barcode:          req.Barcode,
		MinStockRequired: req.MinStockRequired,
		ShelfLife:        inventory.ShelfLife(req.ShelfLife),
	})
	c.JSON(http.StatusOK, p)
}

func (s *Server) getBatches(c *gin.Context) {
	code := c.Query("barcode")
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.productByBarcodeLocked(code)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	out := inventory.ProductBatches{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		Batches:     []inventory.Batch{},
	}
	for _, b := range s.batches {
		if b.ProductID == p.ID {
			out.Batches = append(out.Batches, b)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.productExistsLocked(req.ProductID) || !s.warehouseExistsLocked(req.WarehouseID) {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, s.addBatchLocked(req.ProductID, req.WarehouseID, 0))
}

func (s *Server) adjustStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount < 1 {
		c.Status(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.productExistsLocked(req.ProductID) {
		c.Status(http.StatusNotFound)
		return
	}
	if req.IsEntry && req.WarehouseID != nil {
		if !s.warehouseExistsLocked(*req.WarehouseID) {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusCreated, s.addBatchLocked(req.ProductID, *req.WarehouseID, req.Amount))
		return
	}
	if req.BatchID == nil {
		c.Status(http.StatusBadRequest)
		return
	}
	for i := range s.batches {
		b := &s.batches[i]
		if b.ID != *req.BatchID || b.ProductID != req.ProductID {
			continue
		}
		if req.IsEntry {
			b.CurrentStock += req.Amount
		} else {
			if b.CurrentStock < req.Amount {
				c.JSON(http.StatusBadRequest, fieldError{Field: "amount", Message: "insufficient stock"})
				return
			}
			b.CurrentStock -= req.Amount
		}
		c.JSON(http.StatusOK, *b)
		return
	}
	c.Status(http.StatusNotFound)
}

func (s *Server) listWarehouses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.Warehouse, len(s.warehouses))
	copy(out, s.warehouses)
	c.JSON(http.StatusOK, out)
}

func (s *Server) createWarehouse(c *gin.Context) {
	var req warehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldError{Field: "name", Message: err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 25 {
		c.JSON(http.StatusBadRequest, fieldError{Field: "name", Message: "El nombre no puede tener más de 25 caracteres."})
		return
	}
	if utf8.RuneCountInString(req.Address) > 50 {
		c.JSON(http.StatusBadRequest, fieldError{Field: "address", Message: "address too long"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.warehouses {
		if strings.EqualFold(existing.Name, name) {
			c.JSON(http.StatusConflict, fieldError{Field: "name", Message: "Ya existe un deposito con ese nombre."})
			return
		}
	}
	c.JSON(http.StatusOK, s.addWarehouseLocked(name, req.Address))
}

func (s *Server) userInfo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.user)
}

func (s *Server) productByBarcodeLocked(code string) (inventory.Product, bool) {
	for _, p := range s.products {
		if p.Barcode == code {
			return p, true
		}
	}
	return inventory.Product{}, false
}

func (s *Server) productExistsLocked(id int) bool {
	for _, p := range s.products {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) warehouseExistsLocked(id int) bool {
	for _, w := range s.warehouses {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) addProductLocked(p inventory.Product) inventory.Product {
	p.ID = s.id()
	s.products = append(s.products, p)
	return p
}

func (s *Server) addWarehouseLocked(name, address string) inventory.Warehouse {
	w := inventory.Warehouse{ID: s.id(), Name: name, Address: address}
	s.warehouses = append(s.warehouses, w)
	return w
}

func (s *Server) addCategoryLocked(name string) inventory.Category {
	cat := inventory.Category{ID: s.id(), Name: name}
	s.categories = append(s.categories, cat)
	return cat
}

func (s *Server) addBatchLocked(productID, warehouseID, stock int) inventory.Batch {
	b := inventory.Batch{
		ID:           s.id(),
		ProductID:    productID,
		WarehouseID:  warehouseID,
		EntryDate:    s.clock().Format("2006-01-02"),
		CurrentStock: stock,
	}
	s.batches = append(s.batches, b)
	return b
}

func (s *Server) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("stubapi: %d products, %d batches, %d warehouses, %d categories",
		len(s.products), len(s.batches), len(s.warehouses), len(s.categories))
}
