package server

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"time"

	"war-game/internal/database"
	"war-game/internal/game"
	"war-game/internal/protocol"
	"war-game/internal/shared"
	"war-game/internal/simulation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxSimulationGames bounds one POST /api/simulations request.
const maxSimulationGames = 10_000

// SimulationRequest is the body of POST /api/simulations. Seed is the
// master seed of the batch.
type SimulationRequest struct {
	protocol.StartGamePayload
	Games   int `json:"games"`
	Workers int `json:"workers"`
}

// Deps are the services the HTTP API is built on.
type Deps struct {
	DB       *database.Service
	Hub      *Hub
	Recorder *Recorder
	Setup    game.Setup
	Logger   *zap.Logger
}

type api struct {
	Deps
}

// SetupRouter registers the REST API and the websocket endpoint.
func SetupRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Recorder == nil {
		var store ResultStore
		if deps.DB != nil {
			store = deps.DB
		}
		deps.Recorder = NewRecorder(store, nil, deps.Logger)
	}
	a := &api{Deps: deps}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger))

	r.GET("/status", a.status)
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			ServeWs(deps.Hub, c.Writer, c.Request)
		})
	}

	// Stored results need a database; games and simulations do not.
	if deps.DB != nil {
		results := r.Group("/api/results")
		results.GET("", a.getResults)
		results.GET("/:id", a.getResult)
		results.GET("/winner/:side", a.getResultsByWinner)
		r.GET("/api/stats", a.getStats)
	}

	r.POST("/api/games", a.playGame)
	r.POST("/api/simulations", a.runSimulation)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (a *api) status(c *gin.Context) {
	body := gin.H{"status": "ok", "db_driver": "none"}
	if a.Hub != nil {
		body["clients"] = a.Hub.ClientCount()
		body["sessions"] = a.Hub.SessionCount()
	}
	if a.DB != nil {
		body["db_driver"] = a.DB.Driver()
	}
	c.JSON(http.StatusOK, body)
}

func (a *api) getResults(c *gin.Context) {
	results, err := a.DB.GetAll()
	if err != nil {
		a.Logger.Error("fetching results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (a *api) getResult(c *gin.Context) {
	result, err := a.DB.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
			return
		}
		a.Logger.Error("fetching result", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch result"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *api) getResultsByWinner(c *gin.Context) {
	side, err := shared.ParseSide(c.Param("side"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := a.DB.GetByWinner(side.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No results found for side"})
			return
		}
		a.Logger.Error("fetching results by winner", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (a *api) getStats(c *gin.Context) {
	st, err := a.DB.Stats()
	if err != nil {
		a.Logger.Error("computing stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// bindOptional decodes a JSON body into v; an empty body keeps v as is.
func bindOptional(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// playGame plays one game to the end, records it and returns the result.
func (a *api) playGame(c *gin.Context) {
	var req protocol.StartGamePayload
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	setup, err := req.Apply(a.Setup)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := setup.Build(game.WithLogger(a.Logger))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := g.Run()
	row, err := a.Recorder.Record(res, setup)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store result"})
		return
	}
	c.JSON(http.StatusCreated, protocol.GameOverPayload{Result: res, ResultID: row.ID})
}

func (a *api) runSimulation(c *gin.Context) {
	var req SimulationRequest
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Games < 1 || req.Games > maxSimulationGames {
		c.JSON(http.StatusBadRequest, gin.H{"error": "games must be between 1 and 10000"})
		return
	}
	setup, err := req.Apply(a.Setup)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sum, err := simulation.Run(c.Request.Context(), simulation.Options{
		Setup:   setup,
		Games:   req.Games,
		Workers: req.Workers,
		Seed:    req.Seed,
		Logger:  a.Logger,
	})
	if err != nil {
		a.Logger.Warn("simulation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}
