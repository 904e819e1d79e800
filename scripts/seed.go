package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaayakalpa/healthfinder/internal/adapters/database"
	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	"github.com/kaayakalpa/healthfinder/migrations"
	"github.com/kaayakalpa/healthfinder/pkg/config"
	"github.com/kaayakalpa/healthfinder/pkg/secrets"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

const (
	adminEmail    = "admin@healthfinder.com"
	adminPassword = "admin123"
)

type seedDisease struct {
	name     string
	category string
	types    []string
}

var catalog = []seedDisease{
	{name: "Diabetes", category: "Endocrine", types: []string{"Type 1 Diabetes", "Type 2 Diabetes", "Gestational Diabetes"}},
	{name: "Thyroid Disorders", category: "Endocrine", types: []string{"Hypothyroidism", "Hyperthyroidism", "Goitre"}},
	{name: "Arthritis", category: "Musculoskeletal", types: []string{"Rheumatoid Arthritis", "Osteoarthritis", "Gout"}},
	{name: "Spine Disorders", category: "Musculoskeletal", types: []string{"Lumbar Disc Disease", "Cervical Spondylosis", "Sciatica"}},
	{name: "Headache Disorders", category: "Neurological", types: []string{"Migraine", "Tension Headache", "Cluster Headache"}},
	{name: "Skin Conditions", category: "Dermatological", types: []string{"Psoriasis", "Eczema", "Vitiligo", "Acne"}},
	{name: "Respiratory Diseases", category: "Respiratory", types: []string{"Asthma", "Chronic Bronchitis", "Sinusitis"}},
	{name: "Digestive Disorders", category: "Gastrointestinal", types: []string{"Irritable Bowel Syndrome", "Acid Reflux", "Piles"}},
	{name: "Heart Disease", category: "Cardiovascular", types: []string{"Hypertension", "Coronary Artery Disease"}},
	{name: "Kidney Disease", category: "Renal", types: []string{"Kidney Stones", "Chronic Kidney Disease"}},
	{name: "Mental Health", category: "Psychiatric", types: []string{"Anxiety", "Depression", "Insomnia"}},
	{name: "Cancer", category: "Oncology", types: []string{"Breast Cancer", "Lung Cancer", "Oral Cancer"}},
}

func main() {
	ctx := context.Background()

	if _, err := secrets.Apply(ctx, secrets.VaultConfigFromEnv("")); err != nil {
		log.Fatal().Err(err).Msg("failed to load secrets from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("healthfinder-seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	if err := migrations.Apply(ctx, pgClient.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE reports, otps, centers, diseases, users CASCADE`); err != nil {
			log.Fatal().Err(err).Msg("failed to reset database")
		}
	}

	users := database.NewUserAdapter(pgClient)
	if err := seedAdmin(ctx, users); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin")
	}

	diseaseRepo := database.NewDiseaseAdapter(pgClient)
	diseaseService := services.NewDiseaseService(diseaseRepo, services.NewSymptomMatcher(nil), nil)
	created, err := seedCatalog(ctx, diseaseRepo, diseaseService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed disease catalog")
	}
	log.Info().Int("created", created).Msg("disease catalog seeded")

	if cfg.Typesense.Enabled {
		log.Info().Msg("run cmd/indexer to rebuild the center search collection")
	}
}

func seedAdmin(ctx context.Context, users repositories.UserRepository) error {
	_, err := users.GetByEmail(ctx, adminEmail)
	if err == nil {
		log.Info().Str("email", adminEmail).Msg("admin already exists")
		return nil
	}
	if !apperrors.Is(err, apperrors.ErrorTypeNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &entities.User{
		ID:           uuid.New().String(),
		Name:         "Platform Admin",
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         entities.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", adminEmail).Msg("admin created")
	return nil
}

// seedCatalog creates missing diseases and their subtypes. Existing names are left untouched.
func seedCatalog(ctx context.Context, repo repositories.DiseaseRepository, diseases *services.DiseaseService) (int, error) {
	created := 0
	ensure := func(input services.DiseaseInput) (*entities.Disease, error) {
		disease, err := diseases.Create(ctx, input)
		if err == nil {
			created++
			return disease, nil
		}
		if apperrors.Is(err, apperrors.ErrorTypeConflict) {
			return repo.GetByName(ctx, input.Name)
		}
		return nil, err
	}

	for i, root := range catalog {
		parent, err := ensure(services.DiseaseInput{Name: root.name, Category: root.category, Order: i})
		if err != nil {
			return created, err
		}
		for j, name := range root.types {
			parentID := parent.ID
			if _, err := ensure(services.DiseaseInput{
				Name:     name,
				ParentID: &parentID,
				Category: root.category,
				Order:    j,
			}); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}
