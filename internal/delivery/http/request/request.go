package request

type DiagnoseRequest struct {
	// Force skips the cooldown check.
	Force bool `json:"force"`
}
