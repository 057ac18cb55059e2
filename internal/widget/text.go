package widget

import (
	"errors"
	"fmt"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	"github.com/vincentngwk/GIT-ML-DS/internal/utils"
)

var errNilReport = errors.New("nil report")

// Markdown renders the compact text report.
type Markdown struct{}

func (Markdown) Render(rep *analysis.Report) (View, error) {
	if rep == nil {
		return View{}, errNilReport
	}
	return View{ContentType: "text/markdown; charset=utf-8", Body: []byte(rep.Markdown())}, nil
}

// JSON renders the report as indented JSON.
type JSON struct{}

func (JSON) Render(rep *analysis.Report) (View, error) {
	if rep == nil {
		return View{}, errNilReport
	}
	b, err := utils.PrettyJSON(rep)
	if err != nil {
		return View{}, fmt.Errorf("render json: %w", err)
	}
	return View{ContentType: "application/json", Body: b}, nil
}
