package checkpoint

import "github.com/panda73111/mod0keecrack/pkg/app"

// Validate validates a checkpoint request
func (r *Request) Validate() error {
	if r.StorePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "checkpoint store path is required", nil)
	}
	return nil
}
