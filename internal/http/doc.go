// Package httpapp provides the HTTP server for the questions and answers
// service.
//
//	@title						Q&A API
//	@version					1.0
//	@description				Questions, answers and accounts over HTTP.
//	@description
//	@description				## Authentication Flow
//	@description
//	@description				Writes to questions and answers, and every account operation except
//	@description				registration, require a bearer token.
//	@description
//	@description				### Step 1: Register
//	@description				```bash
//	@description				curl -X POST /accounts -d '{"email":"me@example.com","password":"secret"}'
//	@description				```
//	@description
//	@description				### Step 2: Log in
//	@description				```bash
//	@description				curl -X GET /login -d '{"client_id":"me@example.com","client_secret":"secret"}'
//	@description				# Returns: {"access_token": "TOKEN", "token_type": "Bearer"}
//	@description				```
//	@description
//	@description				### Step 3: Use the token
//	@description				```bash
//	@description				curl -X POST /questions -H "Authorization: Bearer TOKEN" -d '{...}'
//	@description				```
//
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from the /login endpoint
//
//	@tag.name					Questions
//	@tag.description			Ask, browse, edit and remove questions. Lists are ordered by id and can be narrowed to an id range.
//
//	@tag.name					Answers
//	@tag.description			Answers belong to a question and are addressed by the question's id.
//
//	@tag.name					Accounts
//	@tag.description			Registration, login and account management, keyed by email.
package httpapp

//go:generate swag init -g internal/http/doc.go -d ../.. -o ../../docs
