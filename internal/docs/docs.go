// Package docs registra el documento OpenAPI servido en /swagger.
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
        "/health": {
            "get": {
                "summary": "Health check",
                "tags": [
                    "health"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "ok"
                    }
                }
            }
        },
        "/access-requests": {
            "post": {
                "summary": "Pedir acceso temporal a un recurso ajeno",
                "tags": [
                    "access-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/accessrequests.createAccessRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/accessrequests.accessRequestResponse"
                        }
                    },
                    "200": {
                        "description": "pedido pending o grant vigente ya existente",
                        "schema": {
                            "$ref": "#/definitions/accessrequests.accessRequestResponse"
                        }
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "missing X-Admin-Id",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "resource not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/access-requests/inbox": {
            "get": {
                "summary": "Requests recibidos (soy owner)",
                "tags": [
                    "access-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "pending,approved,denied (CSV)",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/accessrequests.accessRequestResponse"
                            }
                        }
                    }
                }
            }
        },
        "/access-requests/outbox": {
            "get": {
                "summary": "Requests enviados",
                "tags": [
                    "access-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "pending,approved,denied (CSV)",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/accessrequests.accessRequestResponse"
                            }
                        }
                    }
                }
            }
        },
        "/access-requests/{requestID}": {
            "get": {
                "summary": "Ver un request (solo owner o requester)",
                "tags": [
                    "access-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "id",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accessrequests.accessRequestResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/access-requests/{requestID}/approve": {
            "post": {
                "summary": "Aprobar un request",
                "tags": [
                    "access-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "id",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "allow_minutes (default 15)",
                        "name": "payload",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/accessrequests.approveRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accessrequests.accessRequestResponse"
                        }
                    },
                    "400": {
                        "description": "allow_minutes too large",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "only the owner can decide",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/access-requests/{requestID}/deny": {
            "post": {
                "summary": "Denegar un request",
                "tags": [
                    "access-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "id",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accessrequests.accessRequestResponse"
                        }
                    },
                    "403": {
                        "description": "only the owner can decide",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/delegations": {
            "post": {
                "summary": "Delegar autoridad en otro admin",
                "tags": [
                    "delegations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Payload",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/delegations.createDelegationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/delegations.delegationResponse"
                        }
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/delegations/{delegationID}/revoke": {
            "post": {
                "summary": "Revocar una delegación",
                "tags": [
                    "delegations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "id",
                        "name": "delegationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/delegations.delegationResponse"
                        }
                    },
                    "403": {
                        "description": "only the delegating admin can revoke",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/delegations/mine": {
            "get": {
                "summary": "Delegaciones que di",
                "tags": [
                    "delegations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/delegations.delegationResponse"
                            }
                        }
                    }
                }
            }
        },
        "/delegations/to-me": {
            "get": {
                "summary": "Delegaciones que recibí",
                "tags": [
                    "delegations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/delegations.delegationResponse"
                            }
                        }
                    }
                }
            }
        },
        "/delegations/delegators": {
            "get": {
                "summary": "Admins por los que actúo hoy",
                "tags": [
                    "delegations"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/departments": {
            "get": {
                "summary": "Listar departments",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "mine | all (default all)",
                        "name": "scope",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "summary": "Crear departments",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/departments/{departmentID}": {
            "get": {
                "summary": "Ver departments",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "D-1 o 1",
                        "name": "departmentID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "summary": "Editar departments (requiere acceso de edición)",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "D-1 o 1",
                        "name": "departmentID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "summary": "Borrar departments (requiere acceso de edición)",
                "tags": [
                    "departments"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "D-1 o 1",
                        "name": "departmentID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/employees": {
            "get": {
                "summary": "Listar employees",
                "tags": [
                    "employees"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "mine | all (default all)",
                        "name": "scope",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "summary": "Crear employees",
                "tags": [
                    "employees"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/employees/{employeeID}": {
            "get": {
                "summary": "Ver employees",
                "tags": [
                    "employees"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "E-15 o 15",
                        "name": "employeeID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "summary": "Editar employees (requiere acceso de edición)",
                "tags": [
                    "employees"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "E-15 o 15",
                        "name": "employeeID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "summary": "Borrar employees (requiere acceso de edición)",
                "tags": [
                    "employees"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "E-15 o 15",
                        "name": "employeeID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/candidates": {
            "get": {
                "summary": "Listar candidates",
                "tags": [
                    "candidates"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "mine | all (default all)",
                        "name": "scope",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "summary": "Crear candidates",
                "tags": [
                    "candidates"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": false
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/candidates/{candidateID}": {
            "get": {
                "summary": "Ver candidates",
                "tags": [
                    "candidates"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "C-007 o 7",
                        "name": "candidateID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "summary": "Editar candidates (requiere acceso de edición)",
                "tags": [
                    "candidates"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "C-007 o 7",
                        "name": "candidateID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "summary": "Borrar candidates (requiere acceso de edición)",
                "tags": [
                    "candidates"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "C-007 o 7",
                        "name": "candidateID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/applications": {
            "get": {
                "summary": "Listar applications",
                "tags": [
                    "applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "mine | all (default all)",
                        "name": "scope",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "summary": "Crear applications",
                "tags": [
                    "applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": false
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/applications/{applicationID}": {
            "get": {
                "summary": "Ver applications",
                "tags": [
                    "applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "APP-012 o 12",
                        "name": "applicationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "summary": "Editar applications (requiere acceso de edición)",
                "tags": [
                    "applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "APP-012 o 12",
                        "name": "applicationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "summary": "Borrar applications (requiere acceso de edición)",
                "tags": [
                    "applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "APP-012 o 12",
                        "name": "applicationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/leave-requests": {
            "get": {
                "summary": "Listar leave-requests",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "mine | all (default all)",
                        "name": "scope",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "summary": "Crear leave-requests",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": false
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/leave-requests/{leaveID}": {
            "get": {
                "summary": "Ver leave-requests",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "L-9 o 9",
                        "name": "leaveID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "summary": "Editar leave-requests (requiere acceso de edición)",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "L-9 o 9",
                        "name": "leaveID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "summary": "Borrar leave-requests (requiere acceso de edición)",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "L-9 o 9",
                        "name": "leaveID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "no access to modify this resource",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/applications/{applicationID}/status": {
            "post": {
                "summary": "Mover la postulación en el pipeline",
                "tags": [
                    "applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "APP-012 o 12",
                        "name": "applicationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "invalid transition",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/leave-requests/{leaveID}/approve": {
            "post": {
                "summary": "Aprobar licencia",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "L-9 o 9",
                        "name": "leaveID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/leave-requests/{leaveID}/reject": {
            "post": {
                "summary": "Rechazar licencia",
                "tags": [
                    "leave-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "L-9 o 9",
                        "name": "leaveID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/employees/{employeeID}/leave-requests": {
            "get": {
                "summary": "Licencias de un empleado",
                "tags": [
                    "employees"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Admin que actúa",
                        "name": "X-Admin-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "E-15 o 15",
                        "name": "employeeID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "accessrequests.createAccessRequest": {
            "type": "object",
            "properties": {
                "resource_type": {
                    "type": "string",
                    "enum": [
                        "Department",
                        "Employee",
                        "Candidate",
                        "JobApplication",
                        "LeaveRequest"
                    ]
                },
                "resource_id": {
                    "type": "string",
                    "example": "E-15"
                },
                "note": {
                    "type": "string"
                }
            }
        },
        "accessrequests.approveRequest": {
            "type": "object",
            "properties": {
                "allow_minutes": {
                    "type": "integer",
                    "maximum": 525600
                }
            }
        },
        "accessrequests.accessRequestResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "resource": {
                    "type": "string"
                },
                "resource_type": {
                    "type": "string"
                },
                "resource_id": {
                    "type": "integer"
                },
                "owner_admin_id": {
                    "type": "string"
                },
                "requester_admin_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "note": {
                    "type": "string"
                },
                "requested_at": {
                    "type": "string"
                },
                "decided_at": {
                    "type": "string"
                },
                "allowed_until": {
                    "type": "string"
                },
                "active": {
                    "type": "boolean"
                }
            }
        },
        "delegations.createDelegationRequest": {
            "type": "object",
            "properties": {
                "to_admin_id": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string",
                    "example": "2025-07-01"
                },
                "end_date": {
                    "type": "string",
                    "example": "2025-07-15"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "delegations.delegationResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "from_admin_id": {
                    "type": "string"
                },
                "to_admin_id": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string"
                },
                "end_date": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "effective_status": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "revoked_at": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "HR Portal API",
	Description:      "Portal interno de RRHH: ownership de recursos, access requests temporales y delegaciones.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
