package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"leatherlane.com/app/internal/http/middleware"
	"leatherlane.com/app/internal/http/validation"
	"leatherlane.com/app/internal/modules/catalog"
	"leatherlane.com/app/internal/modules/orders"
	"leatherlane.com/app/internal/shared/apperr"
)

var storefrontTpl = template.Must(template.New("storefront").Parse(`<!doctype html>
<html>
<body>
	<p>MERCHANT STORE</p>
	<form method="POST" action="/order">
		<legend>{{.Product.Name}} || Price: {{.Product.Price}} {{.Product.Currency}}</legend>
		<label>Quantity:</label>
		<input name="quantity" type="number" value="1">
		<input name="item" type="hidden" value="{{.Product.ID}}">
		<input type="submit" value="Buy">
	</form>
</body>
</html>
`))

// paymentTpl hosts the gateway's dynamic forms widget. The widget posts to
// our /create-charge endpoint with the merchantTransactionId it is given
// here, which is how the order id starts its round trip.
var paymentTpl = template.Must(template.New("payment").Parse(`<!doctype html>
<html>
<body>
	<div id="dynamic-forms-container" style="max-width: 500px; margin: auto; width: 100%; min-width: 350px;"></div>
	<script src="https://cdn.switchpayments.com/libs/switch-4.stable.min.js"></script>
	<script>
		let formOptions = {
			merchantTransactionId: '{{.OrderID}}',
			chargesUrl: '{{.ChargesURL}}',
			showReference: true
		};
		let formContainer = document.getElementById('dynamic-forms-container');
		let switchJs = new SwitchJs(SwitchJs.environments.SANDBOX, '{{.PublicKey}}');
		let dynamicForms = switchJs.dynamicForms(formContainer, formOptions);
		dynamicForms.on('instrument-success', (data) => {
			if (data.reference == null && data.redirect == null) {
				window.location.href = '{{.ReturnURL}}?instrumentId=' + data.id + '&orderId={{.OrderID}}';
			}
		});
	</script>
</body>
</html>
`))

type StorefrontHandler struct {
	Catalog *catalog.Repo
	Store   *orders.Store
	BaseURL string
	// Publishable gateway key embedded in the hosted forms page.
	PublicKey string
}

func NewStorefrontHandler(cat *catalog.Repo, store *orders.Store, baseURL, publicKey string) *StorefrontHandler {
	return &StorefrontHandler{Catalog: cat, Store: store, BaseURL: baseURL, PublicKey: publicKey}
}

// GET /
func (h *StorefrontHandler) Home(c *gin.Context) {
	p, err := h.Catalog.First(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	_ = storefrontTpl.Execute(c.Writer, gin.H{"Product": p})
}

type orderInput struct {
	Item     string `form:"item" binding:"required,max=64"`
	Quantity int    `form:"quantity" binding:"required,min=1,max=100"`
}

// POST /order creates the order and renders the instrument-collection page.
func (h *StorefrontHandler) CreateOrder(c *gin.Context) {
	var in orderInput
	if err := c.ShouldBind(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid order request.", validation.FromBindError(err, &in)))
		return
	}

	p, err := h.Catalog.Get(c.Request.Context(), in.Item)
	if err != nil {
		middleware.Fail(c, apperr.NotFoundErr("Product not found."))
		return
	}

	o, err := h.Store.Create(c.Request.Context(), orders.CreateOrderInput{
		ItemID:   p.ID,
		Quantity: in.Quantity,
		Amount:   in.Quantity * p.Price,
		Currency: p.Currency,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	_ = paymentTpl.Execute(c.Writer, gin.H{
		"OrderID":    o.ID,
		"ChargesURL": h.BaseURL + "/create-charge",
		"ReturnURL":  h.BaseURL + "/return",
		"PublicKey":  h.PublicKey,
	})
}
