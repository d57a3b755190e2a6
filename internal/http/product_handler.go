package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalog catalog.Catalog
	timeout time.Duration
}

func NewProductHandler(c catalog.Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
	}
}

type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// List serves GET /products. Prices in the query are minor units.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}

	list, err := h.catalog.GetProducts(ctx, filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	product, err := h.catalog.GetProductByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product_not_found", domain.ErrProductNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	categories, err := h.catalog.GetCategories(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func parseFilters(w http.ResponseWriter, r *http.Request) (domain.ProductFilters, bool) {
	q := r.URL.Query()
	filters := domain.ProductFilters{
		SearchQuery: q.Get("q"),
		CategoryID:  q.Get("category"),
	}

	minPrice, maxPrice := q.Get("min_price"), q.Get("max_price")
	if minPrice != "" || maxPrice != "" {
		pr := &domain.PriceRange{Min: 0, Max: math.MaxInt64}
		if minPrice != "" {
			v, err := strconv.ParseInt(minPrice, 10, 64)
			if err != nil || v < 0 {
				respondError(w, http.StatusBadRequest, "invalid_price", "min_price must be a non-negative integer")
				return filters, false
			}
			pr.Min = v
		}
		if maxPrice != "" {
			v, err := strconv.ParseInt(maxPrice, 10, 64)
			if err != nil || v < 0 {
				respondError(w, http.StatusBadRequest, "invalid_price", "max_price must be a non-negative integer")
				return filters, false
			}
			pr.Max = v
		}
		filters.PriceRange = pr
	}

	if s := q.Get("in_stock"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "in_stock must be a boolean")
			return filters, false
		}
		filters.InStockOnly = v
	}

	for name, dst := range map[string]*int{"limit": &filters.Limit, "offset": &filters.Offset} {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", name+" must be a non-negative integer")
			return filters, false
		}
		*dst = v
	}
	if filters.Limit > catalog.MaxLimit {
		filters.Limit = catalog.MaxLimit
	}
	return filters, true
}
