// Package docs registra el documento Swagger que sirve /swagger. Se mantiene
// a mano junto con las anotaciones godoc de los handlers.
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
        "/options": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Valores posibles de los filtros",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/search.OptionsResponse"}}
                }
            }
        },
        "/cats": {
            "get": {
                "description": "Búsqueda puntual: el filtro se clasifica y se ejecuta la lectura que corresponde.\ndistance se acepta pero no filtra.",
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Buscar gatos",
                "parameters": [
                    {"type": "string", "description": "Raza o Any", "name": "breed", "in": "query"},
                    {"type": "string", "description": "MALE, FEMALE o Any", "name": "gender", "in": "query"},
                    {"type": "string", "description": "0-1 year, 1-2 years, 2-5 years, Over 5 years o Any", "name": "age_range", "in": "query"},
                    {"type": "integer", "description": "Millas (default 10)", "name": "distance", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/search.searchResponse"}},
                    "400": {"description": "filtro inválido", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Acepta JSON (con image_path) o multipart/form-data con la foto en el campo \"photo\".\nSin nombre o sin foto no se crea nada y responde 204.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Registrar un gato",
                "parameters": [
                    {"description": "Datos del gato (JSON)", "name": "payload", "in": "body", "schema": {"$ref": "#/definitions/cats.admitCatRequest"}},
                    {"type": "file", "description": "Foto (multipart)", "name": "photo", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/cats.Response"}},
                    "204": {"description": "sin nombre o sin foto: no se creó nada"},
                    "400": {"description": "invalid json / dob inválido / gender inválido", "schema": {"type": "string"}},
                    "502": {"description": "photo store unavailable", "schema": {"type": "string"}}
                }
            }
        },
        "/cats/recent": {
            "get": {
                "description": "Gatos ingresados en los últimos 30 días, los más nuevos primero.",
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Ingresos recientes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cats.Response"}}}
                }
            }
        },
        "/cats/recent/stream": {
            "get": {
                "description": "Envía un evento \"cats\" con la lista completa al conectar y cada vez que cambia.",
                "produces": ["text/event-stream"],
                "tags": ["cats"],
                "summary": "Stream de ingresos recientes (SSE)",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cats.Response"}}}
                }
            }
        },
        "/cats/featured": {
            "get": {
                "description": "Uno al azar entre los ingresos recientes.",
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Gato destacado",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cats.featuredResponse"}},
                    "404": {"description": "no recent cats", "schema": {"type": "string"}}
                }
            }
        },
        "/cats/{catID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Detalle de un gato",
                "parameters": [
                    {"type": "integer", "description": "ID del gato", "name": "catID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cats.Response"}},
                    "400": {"description": "invalid id", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/cats/{catID}/photo": {
            "get": {
                "description": "Solo para fotos subidas por la API (image_path \"blob:...\").",
                "produces": ["application/octet-stream"],
                "tags": ["cats"],
                "summary": "Foto de un gato",
                "parameters": [
                    {"type": "integer", "description": "ID del gato", "name": "catID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "description": "Arranca con todos los filtros en Any y una lectura viva de todos los gatos.",
                "produces": ["application/json"],
                "tags": ["browse"],
                "summary": "Abrir sesión de navegación",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/browse.View"}}
                }
            }
        },
        "/sessions/{sessionID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["browse"],
                "summary": "Estado de una sesión",
                "parameters": [
                    {"type": "string", "description": "ID de la sesión", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/browse.View"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["browse"],
                "summary": "Cerrar sesión",
                "parameters": [
                    {"type": "string", "description": "ID de la sesión", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/sessions/{sessionID}/criteria": {
            "put": {
                "description": "Si el filtro no cambió no se emite consulta nueva (changed=false).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["browse"],
                "summary": "Cambiar el filtro de una sesión",
                "parameters": [
                    {"type": "string", "description": "ID de la sesión", "name": "sessionID", "in": "path", "required": true},
                    {"description": "Filtro propuesto", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/search.Criteria"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/browse.updateResponse"}},
                    "400": {"description": "invalid json / filtro inválido", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/sessions/{sessionID}/stream": {
            "get": {
                "description": "Evento \"cats\" con la lista completa al conectar y cada vez que cambia, también al cambiar el filtro.\nSi la sesión se cierra (DELETE o inactividad) llega un evento \"closed\" y el stream termina.",
                "produces": ["text/event-stream"],
                "tags": ["browse"],
                "summary": "Resultados de la sesión (SSE)",
                "parameters": [
                    {"type": "string", "description": "ID de la sesión", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cats.Response"}}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "browse.View": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "criteria": {"$ref": "#/definitions/search.Criteria"},
                "query": {"$ref": "#/definitions/search.Descriptor"},
                "created_at": {"type": "string"}
            }
        },
        "browse.updateResponse": {
            "type": "object",
            "properties": {
                "changed": {"type": "boolean"},
                "session": {"$ref": "#/definitions/browse.View"}
            }
        },
        "cats.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "gender": {"type": "string"},
                "breed": {"type": "string"},
                "description": {"type": "string"},
                "dob": {"type": "string"},
                "admitted_at": {"type": "string"},
                "image_path": {"type": "string"},
                "photo_url": {"type": "string"},
                "kitten": {"type": "boolean"}
            }
        },
        "cats.admitCatRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "gender": {"type": "string"},
                "breed": {"type": "string"},
                "description": {"type": "string"},
                "dob": {"type": "string"},
                "image_path": {"type": "string"}
            }
        },
        "cats.featuredResponse": {
            "type": "object",
            "properties": {
                "cat": {"$ref": "#/definitions/cats.Response"}
            }
        },
        "search.Criteria": {
            "type": "object",
            "properties": {
                "breed": {"type": "string"},
                "gender": {"type": "string"},
                "age_range": {"type": "string"},
                "distance": {"type": "integer"}
            }
        },
        "search.Descriptor": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "breed": {"type": "string"},
                "gender": {"type": "string"},
                "age_range": {"type": "string"}
            }
        },
        "search.OptionsResponse": {
            "type": "object",
            "properties": {
                "breeds": {"type": "array", "items": {"type": "string"}},
                "genders": {"type": "array", "items": {"type": "string"}},
                "age_ranges": {"type": "array", "items": {"type": "string"}},
                "default_distance": {"type": "integer"}
            }
        },
        "search.searchResponse": {
            "type": "object",
            "properties": {
                "query": {"$ref": "#/definitions/search.Descriptor"},
                "cats": {"type": "array", "items": {"$ref": "#/definitions/cats.Response"}}
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
	Title:            "Cat Shelter API",
	Description:      "Búsqueda y alta de gatos del refugio, con lecturas vivas por SSE.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
