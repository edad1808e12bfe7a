package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/chelma/cloud-demo/internal/config"
	"github.com/chelma/cloud-demo/internal/model"
	"github.com/chelma/cloud-demo/internal/planner"
	"github.com/chelma/cloud-demo/internal/store"
)

// PlanRequest carries the planning inputs. Omitted fields take the planner defaults.
type PlanRequest struct {
	ExpectedTraffic  float64 `json:"expectedTraffic"`
	SPIDays          int     `json:"spiDays"`
	Replicas         *int    `json:"replicas"`
	NumAZs           int     `json:"numAzs"`
	PcapStorageClass string  `json:"pcapStorageClass"`
	PcapStorageDays  int     `json:"pcapStorageDays"`
}

// PlanResponse is returned by the plan endpoints.
type PlanResponse struct {
	Plan      map[string]any    `json:"plan"`
	Breakdown planner.Breakdown `json:"breakdown"`
}

// DiffRequest asks how the plan for Input differs from Previous.
type DiffRequest struct {
	Previous map[string]any `json:"previous"`
	Input    PlanRequest    `json:"input"`
}

// DiffResponse lists changes from the previous plan to the new one.
type DiffResponse struct {
	Plan    map[string]any `json:"plan"`
	Changed bool           `json:"changed"`
	Changes []model.Change `json:"changes"`
}

// ClustersResponse lists the clusters with a stored plan.
type ClustersResponse struct {
	Clusters []string `json:"clusters"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (r PlanRequest) validate() error {
	if r.ExpectedTraffic < 0 {
		return fmt.Errorf("expectedTraffic must be non-negative")
	}
	if r.SPIDays < 0 {
		return fmt.Errorf("spiDays must be non-negative")
	}
	if r.Replicas != nil && *r.Replicas < 0 {
		return fmt.Errorf("replicas must be non-negative")
	}
	if r.NumAZs < 0 || r.NumAZs > config.MaxAZs {
		return fmt.Errorf("numAzs must be between 1 and %d", config.MaxAZs)
	}
	if r.PcapStorageDays < 0 {
		return fmt.Errorf("pcapStorageDays must be non-negative")
	}
	return nil
}

func (r PlanRequest) input() planner.Input {
	in := planner.DefaultInput(r.ExpectedTraffic)
	if r.SPIDays > 0 {
		in.SPIDays = r.SPIDays
	}
	if r.Replicas != nil {
		in.Replicas = *r.Replicas
	}
	if r.NumAZs > 0 {
		in.NumAZs = r.NumAZs
	}
	in.S3 = planner.S3Overrides{StorageClass: r.PcapStorageClass, StorageDays: r.PcapStorageDays}
	return in
}

func (s *Server) postPlan(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	in := req.input()
	plan, err := planner.BuildClusterPlan(in)
	if err != nil {
		return planError(c, err)
	}
	return c.JSON(PlanResponse{Plan: plan.ToMap(), Breakdown: planner.Explain(in)})
}

func (s *Server) postPlanDiff(c *fiber.Ctx) error {
	var req DiffRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if req.Previous == nil {
		return badRequest(c, "previous plan is required")
	}
	prev, err := model.ClusterPlanFromMap(req.Previous)
	if err != nil {
		return badRequest(c, "invalid previous plan: "+err.Error())
	}
	if err := req.Input.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	plan, err := planner.BuildClusterPlan(req.Input.input())
	if err != nil {
		return planError(c, err)
	}

	changes := plan.Diff(prev)
	if changes == nil {
		changes = []model.Change{}
	}
	return c.JSON(DiffResponse{Plan: plan.ToMap(), Changed: len(changes) > 0, Changes: changes})
}

func (s *Server) getClusterPlan(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := model.ValidateClusterName(name); err != nil {
		return badRequest(c, err.Error())
	}

	plan, err := s.store.Get(c.UserContext(), name)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(plan.ToMap())
}

func (s *Server) listClusters(c *fiber.Ctx) error {
	names, err := s.store.(store.Lister).Clusters()
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(ClustersResponse{Clusters: names})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// planError maps planner failures: inputs no plan can satisfy are 422, anything else
// is a server fault.
func planError(c *fiber.Ctx, err error) error {
	var tooMuch *planner.TooMuchTrafficError
	var unsatisfiable *planner.UnsatisfiableCapacityError
	if errors.As(err, &tooMuch) || errors.As(err, &unsatisfiable) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
}
