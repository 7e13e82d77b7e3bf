package main

import (
	"log/slog"
	"net/http"
	"path"
	"reflect"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"go.bug.st/f"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arduino/arduino-app-updater/internal/api/models"
	"github.com/arduino/arduino-app-updater/internal/update"
)

type Tag string

const (
	UpdateTag   Tag = "Update"
	SettingsTag Tag = "Settings"
	SystemTag   Tag = "System"
)

var validTags = []Tag{UpdateTag, SettingsTag, SystemTag}

type Generator struct {
	reflector *openapi3.Reflector
}

func errorResponse(code int, description, message string) openapi3.ResponseOrRef {
	return openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: description,
			Content: map[string]openapi3.MediaType{
				"application/json": {
					Example: f.Ptr(any(map[string]any{"details": message})),
					Schema: &openapi3.SchemaOrRef{
						SchemaReference: &openapi3.SchemaReference{
							Ref: "#/components/schemas/ErrorResponse",
						},
					},
				},
			},
		},
	}
}

func NewOpenApiGenerator(version string) *Generator {
	reflector := openapi3.NewReflector()
	reflector.Spec.Info.WithTitle("Arduino-App-Updater").WithVersion(version)
	reflector.Spec.Info.WithDescription("API specification for the Arduino App Updater daemon")
	reflector.Spec.Servers = append(reflector.Spec.Servers, openapi3.Server{
		URL:         "http://localhost:8800",
		Description: f.Ptr("local server"),
	})

	reflector.Spec.Components = &openapi3.Components{}
	reflector.Spec.Components.Schemas = &openapi3.ComponentsSchemas{}
	reflector.Spec.Components.Schemas.WithMapOfSchemaOrRefValuesItem(
		"Status",
		openapi3.SchemaOrRef{
			Schema: &openapi3.Schema{
				UniqueItems: f.Ptr(true),
				Enum:        f.Map(update.Status("").AllowedStatuses(), func(v update.Status) any { return v }),
				Type:        f.Ptr(openapi3.SchemaTypeString),
				Description: f.Ptr("Updater status"),
				ReflectType: reflect.TypeOf(update.Status("")),
			},
		},
	)

	reflector.Spec.Components.WithResponses(
		openapi3.ComponentsResponses{
			MapOfResponseOrRefValues: map[string]openapi3.ResponseOrRef{
				"BadRequest":          errorResponse(http.StatusBadRequest, "Bad Request", "invalid body: unexpected EOF"),
				"Conflict":            errorResponse(http.StatusConflict, "Conflict", update.ErrOperationAlreadyInProgress.Error()),
				"PreconditionFailed":  errorResponse(http.StatusPreconditionFailed, "Precondition Failed", "no update available"),
				"InternalServerError": errorResponse(http.StatusInternalServerError, "Internal Server Error", "internal server error"),
			},
		},
	)

	// Openapi-go automatically add as prefix the package name. We use this hook
	// to manually remove the pkg prefix.
	reflector.DefaultOptions = append(reflector.DefaultOptions,
		jsonschema.InterceptSchema(func(params jsonschema.InterceptSchemaParams) (stop bool, err error) {
			if params.Value.Type() == reflect.TypeOf(update.Status("")) {
				params.Schema.WithRef("#/components/schemas/Status")
				return true, nil
			}
			return false, nil
		}),
		jsonschema.InterceptDefName(func(t reflect.Type, defaultDefName string) string {
			caser := cases.Title(language.English)
			pkgName := caser.String(path.Base(t.PkgPath()))
			if s, found := strings.CutPrefix(defaultDefName, pkgName); found {
				return s
			}
			return defaultDefName
		}),
	)

	return &Generator{reflector: reflector}
}

func (g *Generator) GetDocs() *openapi3.Spec {
	return g.reflector.Spec
}

type OperationConfig struct {
	OperationId    string
	Method         string
	Path           string
	Request        any
	Description    string
	Summary        string
	Tags           []Tag
	PossibleErrors []ErrorResponse

	CustomSuccessResponse *CustomResponseDef
}

type CustomResponseDef struct {
	ContentType   string
	Description   string
	DataStructure any
	StatusCode    int
}

type ErrorResponse struct {
	StatusCode int    `json:"code"`
	Reference  string `json:"message"`
}

var (
	errInternal           = ErrorResponse{StatusCode: http.StatusInternalServerError, Reference: "#/components/responses/InternalServerError"}
	errBadRequest         = ErrorResponse{StatusCode: http.StatusBadRequest, Reference: "#/components/responses/BadRequest"}
	errConflict           = ErrorResponse{StatusCode: http.StatusConflict, Reference: "#/components/responses/Conflict"}
	errPreconditionFailed = ErrorResponse{StatusCode: http.StatusPreconditionFailed, Reference: "#/components/responses/PreconditionFailed"}
)

func jsonResponse(status int, data any) *CustomResponseDef {
	return &CustomResponseDef{
		ContentType:   "application/json",
		DataStructure: data,
		Description:   "Successful response",
		StatusCode:    status,
	}
}

func (g *Generator) InitOperations() {
	operations := []OperationConfig{
		{
			OperationId:           "getUpdateState",
			Method:                http.MethodGet,
			Path:                  "/v1/update",
			CustomSuccessResponse: jsonResponse(http.StatusOK, models.UpdateState{}),
			Description:           "Returns a snapshot of the updater state: status, offered release, download progress and last error.",
			Summary:               "Get the update state",
			Tags:                  []Tag{UpdateTag},
			PossibleErrors:        []ErrorResponse{errInternal},
		},
		{
			OperationId:           "checkForUpdate",
			Method:                http.MethodPost,
			Path:                  "/v1/update/check",
			CustomSuccessResponse: jsonResponse(http.StatusOK, models.UpdateState{}),
			Description:           "Queries the release feed and returns the resulting state. A failed check is reported through the error status, not through the HTTP status code. Refused while a download is running.",
			Summary:               "Check for a new version",
			Tags:                  []Tag{UpdateTag},
			PossibleErrors:        []ErrorResponse{errConflict, errInternal},
		},
		{
			OperationId:           "installUpdate",
			Method:                http.MethodPost,
			Path:                  "/v1/update/install",
			CustomSuccessResponse: jsonResponse(http.StatusAccepted, models.UpdateState{}),
			Description:           "Starts downloading and installing the release found by the last check. Progress is published on the events stream.",
			Summary:               "Download and install the available update",
			Tags:                  []Tag{UpdateTag},
			PossibleErrors:        []ErrorResponse{errConflict, errPreconditionFailed, errInternal},
		},
		{
			OperationId:           "restartApplication",
			Method:                http.MethodPost,
			Path:                  "/v1/update/restart",
			CustomSuccessResponse: jsonResponse(http.StatusAccepted, models.UpdateState{}),
			Description:           "Relaunches the application on the installed update. Only allowed once the update is ready.",
			Summary:               "Restart on the installed update",
			Tags:                  []Tag{UpdateTag},
			PossibleErrors:        []ErrorResponse{errPreconditionFailed, errInternal},
		},
		{
			OperationId: "streamUpdateEvents",
			Method:      http.MethodGet,
			Path:        "/v1/update/events",
			CustomSuccessResponse: &CustomResponseDef{
				ContentType:   "text/event-stream",
				DataStructure: models.UpdateState{},
				Description:   "Server-sent events of type 'state'. The current state is sent first.",
				StatusCode:    http.StatusOK,
			},
			Description:    "Streams every state change of the updater.",
			Summary:        "Stream update state changes",
			Tags:           []Tag{UpdateTag},
			PossibleErrors: []ErrorResponse{errInternal},
		},
		{
			OperationId:           "getSettings",
			Method:                http.MethodGet,
			Path:                  "/v1/settings",
			CustomSuccessResponse: jsonResponse(http.StatusOK, models.SettingsResponse{}),
			Description:           "Returns the auto-update preference and the time of the last successful check.",
			Summary:               "Get the updater settings",
			Tags:                  []Tag{SettingsTag},
			PossibleErrors:        []ErrorResponse{errInternal},
		},
		{
			OperationId:           "setAutoUpdate",
			Method:                http.MethodPut,
			Path:                  "/v1/settings/auto-update",
			Request:               models.AutoUpdateRequest{},
			CustomSuccessResponse: jsonResponse(http.StatusOK, models.SettingsResponse{}),
			Description:           "Enables or disables the automatic check performed once after startup.",
			Summary:               "Set the auto-update preference",
			Tags:                  []Tag{SettingsTag},
			PossibleErrors:        []ErrorResponse{errBadRequest, errInternal},
		},
		{
			OperationId:           "getVersions",
			Method:                http.MethodGet,
			Path:                  "/v1/version",
			CustomSuccessResponse: jsonResponse(http.StatusOK, models.VersionResponse{}),
			Description:           "returns the daemon current version",
			Summary:               "daemon version",
			Tags:                  []Tag{SystemTag},
			PossibleErrors:        []ErrorResponse{errInternal},
		},
	}

	for _, op := range operations {
		if err := g.AddOperation(op); err != nil {
			slog.Error(
				"failed to register OpenApi operation",
				"path", op.Path,
				"method", op.Method,
				"error", err,
			)
		}
	}

	g.reflector.Spec.WithTags(
		f.Map(validTags, func(t Tag) openapi3.Tag {
			return openapi3.Tag{Name: string(t)}
		})...,
	)
}

func (g *Generator) AddOperation(config OperationConfig) error {
	opCtx, err := g.reflector.NewOperationContext(config.Method, config.Path)
	if err != nil {
		return err
	}
	opCtx.SetDescription(config.Description)
	opCtx.SetTags(f.Map(config.Tags, func(t Tag) string { return string(t) })...)
	opCtx.SetSummary(config.Summary)
	opCtx.SetID(config.OperationId)
	if config.Request != nil {
		opCtx.AddReqStructure(config.Request)
	}

	opCtx.AddRespStructure(config.CustomSuccessResponse.DataStructure, func(cu *openapi.ContentUnit) {
		cu.HTTPStatus = config.CustomSuccessResponse.StatusCode
		cu.ContentType = config.CustomSuccessResponse.ContentType
		cu.Description = config.CustomSuccessResponse.Description
	})
	opCtx.AddRespStructure(models.ErrorResponse{}, func(cu *openapi.ContentUnit) {
		cu.IsDefault = true
		cu.Description = "Error response"
	})
	for _, e := range config.PossibleErrors {
		opCtx.AddRespStructure(e, func(cu *openapi.ContentUnit) {
			cu.Customize = func(cor openapi.ContentOrReference) {
				cor.SetReference(e.Reference)
			}
			cu.HTTPStatus = e.StatusCode
		})
	}

	return g.reflector.AddOperation(opCtx)
}
