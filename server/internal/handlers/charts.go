package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/models"
	"github.com/maasir554/fingertail/server/internal/services"
)

type ChartHandler struct {
	log   *zap.Logger
	model *services.ModelService
}

func NewChartHandler(log *zap.Logger, model *services.ModelService) *ChartHandler {
	return &ChartHandler{log: log, model: model}
}

// ProfileChart returns echarts options plotting one feature across the
// legitimate profile, in training order.
func (h *ChartHandler) ProfileChart(c *gin.Context) {
	feature := c.DefaultQuery("feature", models.FeatureNames[1])
	idx := models.FeatureIndex(feature)
	if idx < 0 {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Unknown feature %q", feature))
		return
	}
	profile := h.model.LegitimateFeatures()
	if len(profile) == 0 {
		respondError(c, http.StatusConflict, models.ErrModelNotTrained.Error())
		return
	}

	line := generateProfileChart(profile, idx, feature)
	respond(c, http.StatusOK, line.JSON())
}

func generateProfileChart(profile []models.FeatureVector, idx int, feature string) *charts.Line {
	label := strings.ReplaceAll(feature, "_", " ")
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Legitimate Profile",
			Subtitle: label,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "session",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	xs := make([]string, 0, len(profile))
	items := make([]opts.LineData, 0, len(profile))
	for i, fv := range profile {
		xs = append(xs, fmt.Sprintf("%d", i+1))
		items = append(items, opts.LineData{Value: fv.Values()[idx]})
	}

	line.SetXAxis(xs).AddSeries(label, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
