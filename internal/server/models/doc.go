// Package models defines the capstone records persisted in the database:
// people and their role specialisations, companies, projects, teams, help
// tickets and invites.
package models
