package model

import (
	"context"
	"os"

	"github.com/ticketrush/ticketrush/internal/pkg/encoding/json"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
	"github.com/ticketrush/ticketrush/internal/pkg/validator"
)

type taskFile struct {
	Tasks []Task `json:"tasks" validate:"required,min=1,dive"`
}

// LoadTasksFile reads and validates the task list. Load errors are fatal for the run.
func LoadTasksFile(ctx context.Context, path string) ([]Task, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.PrefixErrorf(err, `cannot read tasks file "%s"`, path)
	}

	file := taskFile{}
	if err := json.Decode(content, &file); err != nil {
		return nil, errors.PrefixErrorf(err, `tasks file "%s" is not valid JSON`, path)
	}

	if err := validator.Validate(ctx, file); err != nil {
		return nil, errors.PrefixErrorf(err, `tasks file "%s" is invalid`, path)
	}

	// Account ids must be unique, a duplicated entry would produce two outcomes for one account
	seen := make(map[string]bool)
	for _, task := range file.Tasks {
		if seen[task.AccountID] {
			return nil, errors.Errorf(`tasks file "%s" is invalid: duplicated account id "%s"`, path, task.AccountID)
		}
		seen[task.AccountID] = true
	}

	return file.Tasks, nil
}
