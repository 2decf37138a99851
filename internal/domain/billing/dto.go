package billing

type CheckoutRequest struct {
	Plan       string `json:"plan" binding:"required,max=64"`
	SuccessURL string `json:"successUrl" binding:"required,url"`
	CancelURL  string `json:"cancelUrl" binding:"required,url"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type CreateProductRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=64"`
	Price int64  `json:"price" binding:"required,min=1"` // cents per month
}
