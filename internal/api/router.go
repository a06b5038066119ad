package api

import (
	"statcalc/domain/calculation"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes onto a gin engine
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.GET("/levels", h.GetLevels)
		api.GET("/tables/verify", h.VerifyTables)

		api.POST("/describe", h.compute(calculation.KindDescribe))
		api.POST("/intervals/mean", h.compute(calculation.KindMeanInterval))
		api.POST("/intervals/mean-t", h.compute(calculation.KindMeanIntervalT))
		api.POST("/intervals/proportion", h.compute(calculation.KindProportionInterval))
		api.POST("/sample-size/mean", h.compute(calculation.KindSampleSizeMean))
		api.POST("/sample-size/proportion", h.compute(calculation.KindSampleSizeProportion))

		api.POST("/batch", h.Batch)
		api.GET("/calculations", h.RecentCalculations)

		if h.datasets != nil {
			api.POST("/datasets", h.CreateDataset)
			api.GET("/datasets", h.ListDatasets)
			api.GET("/datasets/:id", h.GetDataset)
			api.DELETE("/datasets/:id", h.DeleteDataset)
			api.GET("/datasets/:id/calculations", h.DatasetCalculations)
		}

		if h.hub != nil {
			api.GET("/events", h.hub.HandleSSE)
		}
	}

	return router
}
