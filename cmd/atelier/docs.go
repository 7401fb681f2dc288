package main

// @title Atelier Production Service API
// @version 1.0
// @description Workshop production management: catalog and stock, task templates, productions and task tracking.

// @contact.name API Support

// @license.name MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Bornes
// @tag.description Borne (machine model) management endpoints

// @tag.name Items
// @tag.description Pieces and assemblies catalog endpoints

// @tag.name Stock
// @tag.description Stock movement endpoints

// @tag.name Links
// @tag.description Composition link endpoints

// @tag.name Task Templates
// @tag.description Task template registry endpoints

// @tag.name Productions
// @tag.description Production lifecycle endpoints

// @tag.name Tasks
// @tag.description Task execution tracking endpoints

// @tag.name Health
// @tag.description Health check endpoints
