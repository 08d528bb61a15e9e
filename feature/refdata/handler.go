package refdata

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"refdata-manager/core/logger"
	"refdata-manager/core/reconcile"
	"refdata-manager/core/schema"
	"refdata-manager/core/sequence"
	"refdata-manager/core/storage"
	"refdata-manager/core/tabular"
	"refdata-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reference data.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reference data routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/refdata")
	group.Get("/schemas", h.HandleListSchemas)
	group.Post("/codes/:resourceType", h.HandleGenerateCode)
	group.Get("/codes/:code", h.HandleParseCode)
	group.Post("/import/:resourceType", h.HandleImport)
	group.Get("/export/:resourceType", h.HandleExport)
	group.Get("/template/:resourceType", h.HandleTemplate)
	group.Get("/objects", h.HandleListObjects)
	group.Get("/integrity", h.HandleIntegrity)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrUnknownSchema),
		errors.Is(err, sequence.ErrUnknownResourceType):
		return fiber.StatusNotFound
	case errors.Is(err, tabular.ErrMalformedInput),
		errors.Is(err, tabular.ErrEmptySheet),
		errors.Is(err, reconcile.ErrInvalidMode),
		errors.Is(err, sequence.ErrParentCodeRequired),
		errors.Is(err, sequence.ErrInvalidCount),
		errors.Is(err, sequence.ErrInvalidPattern):
		return fiber.StatusBadRequest
	case errors.Is(err, storage.ErrObjectTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleListSchemas lists the registered resource schemas.
// @Summary List Resource Schemas
// @Description Returns the import/export schema of every registered resource type.
// @Tags refdata
// @Produce json
// @Success 200 {array} schema.ResourceSchema "Schemas"
// @Router /refdata/schemas [get]
func (h *Handler) HandleListSchemas(c *fiber.Ctx) error {
	return c.JSON(h.service.Schemas())
}

// HandleGenerateCode allocates one or more codes.
// @Summary Generate Codes
// @Description Allocates the next code(s) of a resource type. Child codes require parentCode.
// @Tags refdata
// @Produce json
// @Param resourceType path string true "Resource type (e.g. 'docType')"
// @Param pattern query string false "primary or child; defaults to the resource's schema"
// @Param parentCode query string false "Parent code for child patterns"
// @Param count query int false "Number of codes to allocate, at most 1000" default(1)
// @Success 200 {object} map[string]interface{} "Allocated codes"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown resource type"
// @Router /refdata/codes/{resourceType} [post]
func (h *Handler) HandleGenerateCode(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	resourceType := c.Params("resourceType")

	count := 1
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("invalid count %q", raw)})
		}
		count = n
	}

	codes, err := h.service.GenerateCodes(c.Context(), resourceType, schema.Pattern(c.Query("pattern")), count, c.Query("parentCode"))
	if err != nil {
		return h.fail(c, l, "Code generation failed", err)
	}

	l.Info("Generated codes", zap.String("resource", resourceType), zap.Strings("codes", codes))
	return c.JSON(fiber.Map{
		"code":  codes[0],
		"codes": codes,
	})
}

// HandleParseCode decomposes a code.
// @Summary Parse Code
// @Description Splits a generated code into prefix, month or parent code, and sequence number.
// @Tags refdata
// @Produce json
// @Param code path string true "Code (e.g. 'DT-202403-000001')"
// @Success 200 {object} ParsedCode "Parsed code"
// @Failure 400 {object} map[string]string "Unrecognized code"
// @Router /refdata/codes/{code} [get]
func (h *Handler) HandleParseCode(c *fiber.Ctx) error {
	code := c.Params("code")
	parsed, ok := h.service.ParseCode(code)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("unrecognized code %q", code)})
	}
	return c.JSON(parsed)
}

// HandleImport reconciles an uploaded workbook, or a bucket object, with stored records.
// @Summary Import Workbook
// @Description Imports a workbook. Row failures are reported in the result, not as HTTP errors.
// @Tags refdata
// @Accept multipart/form-data
// @Produce json
// @Param resourceType path string true "Resource type"
// @Param file formData file false "Workbook (.xlsx)"
// @Param object query string false "Object key in the bucket, instead of an upload"
// @Param mode query string false "upsert, insertOnly or updateOnly" default(upsert)
// @Param dryRun query boolean false "Classify rows without writing"
// @Success 200 {object} reconcile.ImportResult "Import result"
// @Failure 400 {object} map[string]string "Malformed or empty workbook"
// @Failure 404 {object} map[string]string "Unknown resource type"
// @Router /refdata/import/{resourceType} [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	resourceType := c.Params("resourceType")

	mode, err := reconcile.ParseMode(c.FormValue("mode"))
	if err != nil {
		return h.fail(c, l, "Invalid import mode", err)
	}
	dryRun := utils.ToBool(c.FormValue("dryRun"))

	var result *reconcile.ImportResult
	if object := c.Query("object"); object != "" {
		result, err = h.service.ImportObject(c.Context(), object, resourceType, mode, dryRun)
	} else {
		buf, readErr := readUpload(c)
		if readErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": readErr.Error()})
		}
		result, err = h.service.Import(c.Context(), buf, resourceType, mode, dryRun)
	}
	if err != nil {
		return h.fail(c, l, "Import failed", err)
	}

	l.Info("Import completed",
		zap.String("resource", resourceType),
		zap.String("mode", string(mode)),
		zap.Bool("dry_run", dryRun),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	return c.JSON(result)
}

func readUpload(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing workbook upload in field \"file\"")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// HandleExport renders every record of a resource type.
// @Summary Export Workbook
// @Description Downloads the records of a resource type as a workbook, or uploads it to the bucket with upload=true.
// @Tags refdata
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param resourceType path string true "Resource type"
// @Param upload query boolean false "Write to the bucket instead of downloading"
// @Success 200 {file} file "Workbook"
// @Failure 404 {object} map[string]string "Unknown resource type"
// @Router /refdata/export/{resourceType} [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	resourceType := c.Params("resourceType")

	if utils.ToBool(c.Query("upload")) {
		objectName, err := h.service.ExportToStorage(c.Context(), resourceType)
		if err != nil {
			return h.fail(c, l, "Export upload failed", err)
		}
		return c.JSON(fiber.Map{"object": objectName})
	}

	buf, err := h.service.ExportResource(c.Context(), resourceType)
	if err != nil {
		return h.fail(c, l, "Export failed", err)
	}
	return sendWorkbook(c, resourceType+".xlsx", buf)
}

// HandleTemplate downloads an empty workbook for a resource type.
// @Summary Download Import Template
// @Tags refdata
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param resourceType path string true "Resource type"
// @Success 200 {file} file "Workbook"
// @Failure 404 {object} map[string]string "Unknown resource type"
// @Router /refdata/template/{resourceType} [get]
func (h *Handler) HandleTemplate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	resourceType := c.Params("resourceType")

	buf, err := h.service.Template(resourceType)
	if err != nil {
		return h.fail(c, l, "Template rendering failed", err)
	}
	return sendWorkbook(c, resourceType+"-template.xlsx", buf)
}

func sendWorkbook(c *fiber.Ctx, filename string, buf []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, storage.XLSXContentType)
	return c.Send(buf)
}

// HandleListObjects lists workbooks waiting under the import prefix.
// @Summary List Import Objects
// @Tags refdata
// @Produce json
// @Success 200 {object} map[string]interface{} "Object keys"
// @Failure 503 {object} map[string]string "Storage disabled"
// @Router /refdata/objects [get]
func (h *Handler) HandleListObjects(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	keys, err := h.service.ListImportObjects(c.Context())
	if err != nil {
		return h.fail(c, l, "Listing objects failed", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return c.JSON(fiber.Map{"objects": keys})
}

// HandleIntegrity checks tables and bucket layout.
// @Summary Check Integrity
// @Description Verifies table columns and the bucket's import/export prefixes. Optionally creates missing prefixes.
// @Tags refdata
// @Produce json
// @Param fix query boolean false "Create missing bucket prefixes"
// @Success 200 {object} models.IntegrityReport "Integrity report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /refdata/integrity [get]
func (h *Handler) HandleIntegrity(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	report, err := h.service.CheckIntegrity(c.Context(), c.Query("fix") == "true")
	if err != nil {
		return h.fail(c, l, "Integrity check failed", err)
	}
	if !report.Matched {
		l.Warn("Integrity check found problems", zap.Strings("errors", report.Errors))
	}
	return c.JSON(report)
}
