package crack

import (
	"github.com/panda73111/mod0keecrack/internal/services"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

// Validate validates a recovery request
func (r *Request) Validate() error {
	if r.DatabasePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "database path is required", nil)
	}

	if err := services.ValidateSeed(r.StartingPassword); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid starting password", err)
	}

	if r.NoKeyFile && r.KeyFilePath != "" {
		return app.NewError(app.ErrCodeInvalidInput, "cannot specify both a key file and no-key-file", nil)
	}

	if r.CheckpointPath != "" && r.CheckpointPath == r.ResultPath {
		return app.NewError(app.ErrCodeInvalidInput, "checkpoint and result files must differ", nil)
	}
	if r.CheckpointPath != "" && r.CheckpointPath == r.DatabasePath {
		return app.NewError(app.ErrCodeInvalidInput, "checkpoint file must not be the database", nil)
	}
	if r.ResultPath != "" && r.ResultPath == r.DatabasePath {
		return app.NewError(app.ErrCodeInvalidInput, "result file must not be the database", nil)
	}

	if r.ProgressInterval < 0 {
		return app.NewError(app.ErrCodeInvalidInput, "progress interval must not be negative", nil)
	}

	return nil
}
