package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Registry API",
        "description": "REST backend for managing students, teachers, subjects and sections",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Account registration and login"},
        {"name": "Students", "description": "Student records"},
        {"name": "Teachers", "description": "Teacher records and subject assignments"},
        {"name": "Subjects", "description": "Subject catalog"},
        {"name": "Sections", "description": "Sections with subject offerings and enrollments"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/authentication/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TokenEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/authentication/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "grade", "in": "query", "type": "integer"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "schoolYear", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "schoolYear", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Duplicate email", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher with subject assignments",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Duplicate email", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Delete teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/teachers/{id}/subjects": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List a teacher's subject assignments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "schoolYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Replace a teacher's subject assignments for a school year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSubjectsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Teacher or subject not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Subjects"],
                "summary": "Create subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Duplicate code", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/subjects/{id}": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Get subject with assigned teachers",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Subjects"],
                "summary": "Update subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Duplicate code", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Subjects"],
                "summary": "Delete subject",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sections": {
            "get": {
                "tags": ["Sections"],
                "summary": "List sections with adviser and headcount",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "gradeLevel", "in": "query", "type": "string"},
                    {"name": "schoolYear", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Sections"],
                "summary": "Create section with subjects and students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Referenced entity not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sections/{id}": {
            "get": {
                "tags": ["Sections"],
                "summary": "Get section with adviser, subjects and students",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Sections"],
                "summary": "Update section, optionally replacing subjects and students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sections"],
                "summary": "Delete section and its relations",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sections/{id}/subjects": {
            "post": {
                "tags": ["Sections"],
                "summary": "Replace a section's subject offerings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceSectionSubjectsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Section, subject or teacher not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sections/{id}/students": {
            "post": {
                "tags": ["Sections"],
                "summary": "Replace a section's student enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceSectionStudentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Section or student not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/sections/{id}/roster": {
            "get": {
                "tags": ["Sections"],
                "summary": "Export the section roster as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Roster file"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "TokenEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "auth": {
                    "type": "object",
                    "properties": {
                        "token": {"type": "string"},
                        "expiresIn": {"type": "integer"}
                    }
                }
            }
        },
        "StudentRequest": {
            "type": "object",
            "required": ["firstName", "lastName", "gender", "age", "grade", "schoolYear"],
            "properties": {
                "firstName": {"type": "string"},
                "middleName": {"type": "string"},
                "lastName": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "age": {"type": "integer", "minimum": 4, "maximum": 100},
                "grade": {"type": "integer", "minimum": 1, "maximum": 12},
                "section": {"type": "string"},
                "schoolYear": {"type": "string"},
                "schoolName": {"type": "string"},
                "subject": {"type": "string"},
                "gradingPeriod": {"type": "string"},
                "division": {"type": "string"}
            }
        },
        "TeacherRequest": {
            "type": "object",
            "required": ["firstName", "lastName", "gender", "age", "email", "schoolYear"],
            "properties": {
                "firstName": {"type": "string"},
                "middleName": {"type": "string"},
                "lastName": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "age": {"type": "integer", "minimum": 21, "maximum": 100},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "department": {"type": "string"},
                "qualification": {"type": "string"},
                "yearsOfExperience": {"type": "integer", "minimum": 0},
                "schoolYear": {"type": "string"}
            }
        },
        "AssignSubjectsRequest": {
            "type": "object",
            "required": ["schoolYear", "subjectIds"],
            "properties": {
                "schoolYear": {"type": "string"},
                "subjectIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SubjectRequest": {
            "type": "object",
            "required": ["name", "code"],
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "SectionSubjectInput": {
            "type": "object",
            "required": ["subjectId", "teacherId"],
            "properties": {
                "subjectId": {"type": "string"},
                "teacherId": {"type": "string"},
                "schedule": {"type": "string"},
                "room": {"type": "string"}
            }
        },
        "CreateSectionRequest": {
            "type": "object",
            "required": ["name", "gradeLevel", "schoolYear", "adviserId"],
            "properties": {
                "name": {"type": "string"},
                "gradeLevel": {"type": "string"},
                "schoolYear": {"type": "string"},
                "adviserId": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SectionSubjectInput"}},
                "studentIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UpdateSectionRequest": {
            "type": "object",
            "required": ["name", "gradeLevel", "schoolYear", "adviserId"],
            "properties": {
                "name": {"type": "string"},
                "gradeLevel": {"type": "string"},
                "schoolYear": {"type": "string"},
                "adviserId": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SectionSubjectInput"}},
                "studentIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ReplaceSectionSubjectsRequest": {
            "type": "object",
            "required": ["subjects"],
            "properties": {
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SectionSubjectInput"}}
            }
        },
        "ReplaceSectionStudentsRequest": {
            "type": "object",
            "required": ["studentIds"],
            "properties": {
                "studentIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
