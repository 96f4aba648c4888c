package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/configproxy/core/internal/models"
	"github.com/configproxy/core/internal/parser"
	"github.com/configproxy/core/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// maxSnapshotBytes bounds the body accepted by the resolve endpoint.
const maxSnapshotBytes = 16 << 20

// ConfigurationService is the subset of service.ConfigurationService the
// handlers rely on.
type ConfigurationService interface {
	RootConfigurations(ctx context.Context, language string) (*models.Nodes, error)
	FamilyOf(ctx context.Context, id, language string) (*models.ConfigTypeNode, error)
	FamilyIcon(ctx context.Context, id, language string) (*service.FamilyIcon, error)
	Resolve(ctx context.Context, snapshot *models.Snapshot) (*models.Nodes, error)
}

var _ ConfigurationService = (*service.ConfigurationService)(nil)

// HandleRootConfigurations serves the flattened root configuration index.
func HandleRootConfigurations(svc ConfigurationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		nodes, err := svc.RootConfigurations(c.Request.Context(), c.Query("language"))
		if err != nil {
			writeError(c, err)
			return
		}
		render(c, nodes)
	}
}

// HandleFamily serves the family owning the configuration type :id.
func HandleFamily(svc ConfigurationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		family, err := svc.FamilyOf(c.Request.Context(), c.Param("id"), c.Query("language"))
		if err != nil {
			writeError(c, err)
			return
		}
		render(c, family)
	}
}

// HandleIcon serves the icon of the family owning :id.
func HandleIcon(svc ConfigurationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		icon, err := svc.FamilyIcon(c.Request.Context(), c.Param("id"), c.Query("language"))
		if err != nil {
			writeError(c, err)
			return
		}
		render(c, icon)
	}
}

// HandleResolve flattens a snapshot posted by the caller. The body is JSON
// unless the content type names YAML; bodies over maxSnapshotBytes get 413.
func HandleResolve(svc ConfigurationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSnapshotBytes))
		if err != nil {
			writeBadRequest(c, errors.Wrap(err, "failed to read body"))
			return
		}

		format := parser.FormatJSON
		if strings.Contains(c.ContentType(), "yaml") {
			format = parser.FormatYAML
		}
		snapshot, err := parser.ParseSnapshot(body, format)
		if err != nil {
			writeBadRequest(c, err)
			return
		}

		nodes, err := svc.Resolve(c.Request.Context(), snapshot)
		if err != nil {
			writeError(c, err)
			return
		}
		render(c, nodes)
	}
}

func render(c *gin.Context, v any) {
	if c.Query("pretty") == "true" {
		c.IndentedJSON(http.StatusOK, v)
		return
	}
	c.JSON(http.StatusOK, v)
}
