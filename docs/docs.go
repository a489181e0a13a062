// Package docs registers the OpenAPI document of the portal agent with swag.
// Regenerate with: swag init -g cmd/portal-agent/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        },
        "/v1/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.loginErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.loginErrorResponse"}}
                }
            }
        },
        "/v1/session/logout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign out",
                "parameters": [
                    {"description": "Options", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.logoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        },
        "/v1/session/user": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Update the signed-in user",
                "parameters": [
                    {"description": "Partial user", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/session/campus": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Select campus",
                "parameters": [
                    {"description": "Campus", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.campusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.campusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/session/modules/{module}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Check module access",
                "parameters": [
                    {"type": "string", "description": "Module", "name": "module", "in": "path", "required": true},
                    {"type": "string", "description": "Subroute", "name": "subroute", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.moduleAccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/session/signals": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["signals"],
                "summary": "Ingest a UI signal",
                "parameters": [
                    {"description": "Signal", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signalRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/session/signals/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["signals"],
                "summary": "Ingest a batch of UI signals",
                "parameters": [
                    {"description": "Signals, oldest first", "name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.signalRequest"}}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "phone": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "campusId": {"type": "string"},
                "profile": {"type": "object", "additionalProperties": true}
            }
        },
        "domain.UserPatch": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "phone": {"type": "string"},
                "name": {"type": "string"},
                "campusId": {"type": "string"},
                "profile": {"type": "object", "additionalProperties": true}
            }
        },
        "domain.ModuleAccess": {
            "type": "object",
            "properties": {
                "allowModules": {"description": "\"ALL\" or a list of module keys"},
                "allowSubroutes": {"description": "\"ALL\" or a list of subroute keys"}
            }
        },
        "handler.acceptedResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "count": {"type": "integer"}}
        },
        "handler.campusRequest": {
            "type": "object",
            "properties": {"campus_id": {"type": "string", "maxLength": 128}}
        },
        "handler.campusResponse": {
            "type": "object",
            "properties": {"campus_id": {"type": "string"}}
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.loginErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "status": {"type": "integer"}, "data": {"type": "object"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["identifier", "password"],
            "properties": {
                "identifier": {"type": "string", "maxLength": 254},
                "password": {"type": "string"},
                "remember": {"type": "boolean"},
                "owner_key": {"type": "string", "maxLength": 128}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/domain.User"}, "redirect": {"type": "string"}}
        },
        "handler.logoutRequest": {
            "type": "object",
            "properties": {"skip_remote": {"type": "boolean"}}
        },
        "handler.moduleAccessResponse": {
            "type": "object",
            "properties": {"module": {"type": "string"}, "subroute": {"type": "string"}, "allowed": {"type": "boolean"}}
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "loading": {"type": "boolean"},
                "user": {"$ref": "#/definitions/domain.User"},
                "module_access": {"$ref": "#/definitions/domain.ModuleAccess"},
                "campus_id": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "handler.signalRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {
                "kind": {"type": "string", "enum": ["focus", "visibility", "unauthorized"]},
                "visible": {"type": "boolean"},
                "url": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Campus Portal Agent API",
	Description:      "Local session surface for the campus portal UI shell.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
