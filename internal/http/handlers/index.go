package handlers

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/sevenbarberclub/booking/pkg/logging"
)

//go:embed web/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// IndexHandler serves the booking form page.
type IndexHandler struct {
	shopName string
	logger   *logging.Logger
}

func NewIndexHandler(shopName string, logger *logging.Logger) *IndexHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IndexHandler{shopName: shopName, logger: logger}
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]string{"ShopName": h.shopName}); err != nil {
		h.logger.Error("failed to render index", "error", err)
	}
}
