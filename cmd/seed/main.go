package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"statsboard-backend/config"
	"statsboard-backend/pkg/adapter/repository/projectrepository"
	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/datastore"
	"statsboard-backend/pkg/util/auth"
)

type SeedProject struct {
	Name     string
	SiteCode string
	APIToken string
}

var seedProjects = []SeedProject{
	{Name: "Marketing site"},
	{Name: "Docs"},
	{Name: "Blog"},
}

func main() {
	env := flag.String("env", "", "Environment (development, test, e2e, staging, production)")
	truncate := flag.Bool("truncate", false, "Truncate data (delete all projects)")
	owner := flag.String("owner", "", "Owner id of the seeded projects; generated when empty")
	siteCode := flag.String("site-code", "", "GoatCounter site code of the first project")
	apiToken := flag.String("api-token", "", "GoatCounter API token of the first project")
	flag.Parse()

	if *env != "" {
		os.Setenv("APP_ENV", *env)
	}

	config.ReadConfig(config.ReadConfigOption{})
	log.Printf("Starting seed tool for environment: %s", config.C.AppEnv)

	ctx := context.Background()
	pool, err := datastore.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := datastore.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	if *truncate {
		if err := truncateData(ctx, pool); err != nil {
			log.Fatalf("Failed to truncate data: %v", err)
		}
		log.Println("Truncation completed successfully!")
	}

	ownerID := model.ID(*owner)
	if ownerID == "" {
		ownerID = model.NewID(model.UserPrefix)
	}

	projects := seedProjects
	projects[0].SiteCode = *siteCode
	projects[0].APIToken = *apiToken

	if err := seedProjectsData(ctx, pool, ownerID, projects); err != nil {
		log.Fatalf("Failed to seed projects: %v", err)
	}

	token, err := auth.GenerateAccessTokenWithSecret(string(ownerID), []byte(config.C.JwtTokenSecret), auth.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	log.Printf("Seeding completed successfully! owner=%s", ownerID)
	fmt.Println(token)
}

func truncateData(ctx context.Context, pool *pgxpool.Pool) error {
	log.Println("Truncating projects table...")
	if _, err := pool.Exec(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to delete projects: %w", err)
	}
	return nil
}

func seedProjectsData(ctx context.Context, pool *pgxpool.Pool, ownerID model.ID, projects []SeedProject) error {
	log.Println("Seeding projects...")
	repo := projectrepository.NewProjectRepository(pool)

	for _, p := range projects {
		project := &model.Project{OwnerID: ownerID, Name: p.Name}
		if p.SiteCode != "" {
			project.SiteCode = &p.SiteCode
		}
		if p.APIToken != "" {
			project.APIToken = &p.APIToken
		}

		created, err := repo.Create(ctx, project)
		if err != nil {
			return fmt.Errorf("failed to create project %s: %w", p.Name, err)
		}
		log.Printf("Created project: %s (%s, configured=%t)", created.Name, created.ID, created.Configured())
	}
	return nil
}
