package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/transport"
	"github.com/Skotchmaster/shivgems/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (int, int) {
	return util.ParseIntDefault(c.QueryParam("page"), 1), util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, size := pageParams(c)
	listing := h.Svc.List(ctx, page, size)

	l.Info("get_products_success", "source", listing.Source, "count", len(listing.Products))
	return c.JSON(http.StatusOK, transport.ProductListResponse{
		Source: string(listing.Source),
		Data:   listing.Products,
		Meta:   listing.Meta,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	res, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ProductResponse{Source: string(res.Source), Data: &res.Product})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page, size := pageParams(c)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_failed", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Data: items})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_create_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "error", err)
		return err
	}

	prod, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_update_error", err)
	}

	prod, err := h.Svc.Update(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	if err := h.Svc.Delete(ctx, c.Param("id")); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "product deleted"})
}
