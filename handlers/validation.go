package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/planner"
)

// createTaskRequest is the body of POST /tasks.
type createTaskRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Status      models.Status   `json:"status" validate:"omitempty,oneof=todo in-progress done"`
	Priority    models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Date        string          `json:"date" validate:"omitempty,day"`
	DueDate     string          `json:"dueDate" validate:"omitempty,instant"`
	EndDateTime string          `json:"endDateTime" validate:"omitempty,instant"`
	DependsOn   []string        `json:"dependsOn" validate:"omitempty,dive,required"`
}

// patchTaskRequest is the body of PATCH /tasks/{id}. An empty dueDate or
// endDateTime clears the field.
type patchTaskRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Status      *models.Status   `json:"status" validate:"omitempty,oneof=todo in-progress done"`
	Priority    *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Date        *string          `json:"date" validate:"omitempty,day"`
	DueDate     *string          `json:"dueDate" validate:"omitempty,instant|len=0"`
	EndDateTime *string          `json:"endDateTime" validate:"omitempty,instant|len=0"`
	DependsOn   *[]string        `json:"dependsOn" validate:"omitempty,dive,required"`
}

func (p patchTaskRequest) patch() models.TaskPatch {
	return models.TaskPatch{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		Date:        p.Date,
		DueDate:     p.DueDate,
		EndDateTime: p.EndDateTime,
		DependsOn:   p.DependsOn,
	}
}

type statusRequest struct {
	Status models.Status `json:"status" validate:"required,oneof=todo in-progress done"`
}

// dropRequest describes where a dragged card was released. The same body,
// minus the task id, previews the target column while dragging.
type dropRequest struct {
	Point         planner.Point `json:"point"`
	Container     planner.Rect  `json:"container"`
	ViewportWidth float64       `json:"viewportWidth" validate:"gte=0"`
}

type dropPreviewRequest struct {
	dropRequest
	Status models.Status `json:"status" validate:"omitempty,oneof=todo in-progress done"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails for an empty tag or a nil func
	_ = v.RegisterValidation("day", func(fl validator.FieldLevel) bool {
		return planner.ValidDay(fl.Field().String())
	})
	_ = v.RegisterValidation("instant", func(fl validator.FieldLevel) bool {
		_, ok := planner.ParseInstant(fl.Field().String())
		return ok
	})
	return v
}

// validationFields flattens validator errors into field -> rule.
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		fields[fe.Field()] = rule
	}
	return fields
}
