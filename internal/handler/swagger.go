package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/osdesk/osdesk-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

const (
	swaggerRefPrefix = "#/definitions/"
	openAPIRefPrefix = "#/components/schemas/"
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

// transformRefs recursively rewrites $ref values from #/definitions/ to #/components/schemas/
func transformRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, swaggerRefPrefix, openAPIRefPrefix, 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformPaths converts every operation of a Swagger 2.0 paths object
func transformPaths(paths map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(paths))
	for path, item := range paths {
		methods, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = transformOperation(operation)
			} else {
				converted[method] = op
			}
		}
		result[path] = converted
	}
	return result
}

// transformOperation moves body and formData parameters into requestBody and
// response schemas under content, as OpenAPI 3.0 requires.
func transformOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			result[key] = transformRefs(value)
		}
	}

	produces := mediaType(op["produces"], echo.MIMEApplicationJSON)

	var (
		params     []interface{}
		formProps  = map[string]interface{}{}
		formNeeded []interface{}
	)
	rawParams, _ := op["parameters"].([]interface{})
	for _, p := range rawParams {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			body := map[string]interface{}{
				"content": map[string]interface{}{
					mediaType(op["consumes"], echo.MIMEApplicationJSON): map[string]interface{}{
						"schema": transformRefs(param["schema"]),
					},
				},
			}
			if desc, ok := param["description"]; ok {
				body["description"] = desc
			}
			if req, ok := param["required"]; ok {
				body["required"] = req
			}
			result["requestBody"] = body
		case "formData":
			name, _ := param["name"].(string)
			formProps[name] = formDataSchema(param)
			if req, _ := param["required"].(bool); req {
				formNeeded = append(formNeeded, name)
			}
		default:
			params = append(params, transformParameter(param))
		}
	}

	if len(params) > 0 {
		result["parameters"] = params
	}
	if len(formProps) > 0 {
		schema := map[string]interface{}{"type": "object", "properties": formProps}
		if len(formNeeded) > 0 {
			schema["required"] = formNeeded
		}
		result["requestBody"] = map[string]interface{}{
			"required": len(formNeeded) > 0,
			"content": map[string]interface{}{
				mediaType(op["consumes"], echo.MIMEMultipartForm): map[string]interface{}{"schema": schema},
			},
		}
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		converted := make(map[string]interface{}, len(responses))
		for code, r := range responses {
			resp, ok := r.(map[string]interface{})
			if !ok {
				converted[code] = r
				continue
			}
			out := make(map[string]interface{}, len(resp))
			for key, value := range resp {
				if key == "schema" {
					out["content"] = map[string]interface{}{
						produces: map[string]interface{}{"schema": transformRefs(value)},
					}
					continue
				}
				out[key] = transformRefs(value)
			}
			converted[code] = out
		}
		result["responses"] = converted
	}

	return result
}

// transformParameter converts a Swagger 2.0 path, query or header parameter to OpenAPI 3.0 format
func transformParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = transformRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

func formDataSchema(param map[string]interface{}) map[string]interface{} {
	if param["type"] == "file" {
		return map[string]interface{}{"type": "string", "format": "binary"}
	}
	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "description"} {
		if val, ok := param[field]; ok {
			schema[field] = val
		}
	}
	return schema
}

// mediaType returns the first entry of a consumes/produces list
func mediaType(list interface{}, fallback string) string {
	if types, ok := list.([]interface{}); ok && len(types) > 0 {
		if s, ok := types[0].(string); ok {
			return s
		}
	}
	return fallback
}

// ServeOpenAPI3Spec serves the swagger spec converted to OpenAPI 3.0 with multiple servers
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read swagger doc"})
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to parse swagger doc"})
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = transformRefs(definitions)
	}

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI: "3.0.3",
		Info:    info,
		Servers: []Server{
			{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
			{URL: "https://api.osdesk.app/api/v1", Description: "Production"},
		},
		Paths:      transformPaths(paths),
		Components: components,
	})
}
