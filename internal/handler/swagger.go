package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/evenup/evenup-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec represents an OpenAPI 3.0 spec structure
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DefaultServers lists the servers advertised when none are configured
var DefaultServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
}

// rewriteRef maps a Swagger 2.0 definition reference to its OpenAPI 3.0 location
func rewriteRef(ref string) string {
	return strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
}

// convertSchemas recursively rewrites $ref values inside schema objects
func convertSchemas(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = rewriteRef(ref)
				continue
			}
			result[key] = convertSchemas(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = convertSchemas(item)
		}
		return result
	default:
		return data
	}
}

// convertOperation turns a Swagger 2.0 operation into OpenAPI 3.0 form.
// Body parameters become a requestBody and response schemas move under content.
func convertOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for _, field := range []string{"summary", "description", "tags", "operationId"} {
		if val, ok := op[field]; ok {
			result[field] = val
		}
	}

	var params []interface{}
	rawParams, _ := op["parameters"].([]interface{})
	for _, raw := range rawParams {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if param["in"] == "body" {
			body := map[string]interface{}{
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{"schema": convertSchemas(param["schema"])},
				},
			}
			if desc, ok := param["description"]; ok {
				body["description"] = desc
			}
			if req, ok := param["required"]; ok {
				body["required"] = req
			}
			result["requestBody"] = body
			continue
		}
		params = append(params, convertParameter(param))
	}
	if len(params) > 0 {
		result["parameters"] = params
	}

	responses := make(map[string]interface{})
	rawResponses, _ := op["responses"].(map[string]interface{})
	for code, raw := range rawResponses {
		r, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		converted := map[string]interface{}{"description": r["description"]}
		if schema, ok := r["schema"]; ok {
			converted["content"] = map[string]interface{}{
				"application/json": map[string]interface{}{"schema": convertSchemas(schema)},
			}
		}
		responses[code] = converted
	}
	result["responses"] = responses

	return result
}

// convertParameter converts a non-body Swagger 2.0 parameter to OpenAPI 3.0 format
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = convertSchemas(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}

	return result
}

func convertPaths(paths map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(paths))
	for path, raw := range paths {
		methods, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, rawOp := range methods {
			if op, ok := rawOp.(map[string]interface{}); ok {
				converted[method] = convertOperation(op)
			}
		}
		result[path] = converted
	}
	return result
}

// OpenAPI3Handler serves the generated swagger doc converted to OpenAPI 3.0
func OpenAPI3Handler(servers []Server) echo.HandlerFunc {
	if len(servers) == 0 {
		servers = DefaultServers
	}

	return func(c echo.Context) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return NewInternalError(c, "Failed to read API documentation")
		}

		var swagger2 map[string]interface{}
		if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
			return NewInternalError(c, "Failed to parse API documentation")
		}

		info, _ := swagger2["info"].(map[string]interface{})
		paths, _ := swagger2["paths"].(map[string]interface{})

		components := make(map[string]interface{})
		if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
			components["schemas"] = convertSchemas(definitions)
		}

		return c.JSON(http.StatusOK, OpenAPI3Spec{
			OpenAPI:    "3.0.3",
			Info:       info,
			Servers:    servers,
			Paths:      convertPaths(paths),
			Components: components,
		})
	}
}
