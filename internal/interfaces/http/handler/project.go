package handler

import (
	"net/http"
	"strconv"

	"github.com/donortrack/backend/internal/application/donation"
	"github.com/donortrack/backend/internal/application/project"
	"github.com/donortrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProjectHandler serves the public catalog and NGO project management
type ProjectHandler struct {
	BaseHandler
	projects *project.ProjectService
	ledger   *donation.LedgerService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *project.ProjectService, ledger *donation.LedgerService) *ProjectHandler {
	return &ProjectHandler{projects: projects, ledger: ledger}
}

// List godoc
// @ID           listProjects
// @Summary      Browse projects
// @Description  Filters by category, status and location; search matches title or description
// @Tags         projects
// @Produce      json
// @Param        page     query int    false "Page number" default(1)
// @Param        limit    query int    false "Page size" default(12)
// @Param        category query string false "Category"
// @Param        status   query string false "ACTIVE, COMPLETED or SUSPENDED"
// @Param        location query string false "Location substring"
// @Param        search   query string false "Title or description substring"
// @Success      200 {object} PagedResponse[project.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var q project.ListProjectsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.projects.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get godoc
// @ID           getProject
// @Summary      Project detail
// @Description  Includes milestones, the latest updates and impact metrics, and the donation count
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} APIResponse[project.ProjectDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	detail, err := h.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Related godoc
// @ID           listRelatedProjects
// @Summary      Related projects
// @Description  Other active projects in the same category
// @Tags         projects
// @Produce      json
// @Param        id    path  string true  "Project ID"
// @Param        limit query int    false "Maximum results" default(3)
// @Success      200 {object} APIResponse[[]project.ProjectResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /projects/{id}/related [get]
func (h *ProjectHandler) Related(c *gin.Context) {
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	items, err := h.projects.Related(c.Request.Context(), id, queryInt(c, "limit"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// RecentDonations godoc
// @ID           listRecentProjectDonations
// @Summary      Recent donations to a project
// @Description  Latest completed donations, newest first
// @Tags         projects
// @Produce      json
// @Param        id    path  string true  "Project ID"
// @Param        limit query int    false "Maximum results" default(5)
// @Success      200 {object} APIResponse[[]donation.DonationView]
// @Failure      400 {object} ErrorResponse
// @Router       /projects/{id}/donations/recent [get]
func (h *ProjectHandler) RecentDonations(c *gin.Context) {
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	items, err := h.ledger.RecentForProject(c.Request.Context(), id, queryInt(c, "limit"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Create godoc
// @ID           createProject
// @Summary      Create project
// @Description  Creates an ACTIVE project owned by the calling NGO administrator
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body project.CreateProjectRequest true "Project"
// @Success      201 {object} APIResponse[project.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	ngoID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req project.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.projects.Create(c.Request.Context(), ngoID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @ID           updateProject
// @Summary      Update project
// @Description  Updates an owned project; the raised amount cannot be edited
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                       true "Project ID"
// @Param        request body project.UpdateProjectRequest true "Changed fields"
// @Success      200 {object} APIResponse[project.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	ngoID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	var req project.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.projects.Update(c.Request.Context(), ngoID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddUpdate godoc
// @ID           addProjectUpdate
// @Summary      Post a progress update
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                   true "Project ID"
// @Param        request body project.AddUpdateRequest true "Update"
// @Success      201 {object} APIResponse[project.UpdateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /projects/{id}/updates [post]
func (h *ProjectHandler) AddUpdate(c *gin.Context) {
	ngoID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	var req project.AddUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.projects.AddUpdate(c.Request.Context(), ngoID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AddMilestone godoc
// @ID           addProjectMilestone
// @Summary      Add a milestone
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                      true "Project ID"
// @Param        request body project.AddMilestoneRequest true "Milestone"
// @Success      201 {object} APIResponse[project.MilestoneResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /projects/{id}/milestones [post]
func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	ngoID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	var req project.AddMilestoneRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.projects.AddMilestone(c.Request.Context(), ngoID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AddMetric godoc
// @ID           addProjectMetric
// @Summary      Record an impact metric
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                   true "Project ID"
// @Param        request body project.AddMetricRequest true "Metric"
// @Success      201 {object} APIResponse[project.MetricResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /projects/{id}/metrics [post]
func (h *ProjectHandler) AddMetric(c *gin.Context) {
	ngoID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id", "project")
	if !ok {
		return
	}
	var req project.AddMetricRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.projects.AddImpactMetric(c.Request.Context(), ngoID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// queryInt reads an optional integer query parameter; junk reads as zero so
// the service default applies
func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}
