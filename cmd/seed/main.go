package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"eduforms/internal/config"
	"eduforms/internal/database"
	"eduforms/internal/domain"
	"eduforms/internal/modules/form"
	jwtsvc "eduforms/internal/pkg/jwt"
	"eduforms/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM leads")
	db.Exec("DELETE FROM form_submissions")
	db.Exec("DELETE FROM dynamic_forms")

	formService := form.NewService(repository.NewFormRepository(db))
	ctx := context.Background()

	log.Println("Creating demo forms...")

	intPtr := func(n int) *int { return &n }

	contact, err := formService.Create(ctx, &form.FormRequest{
		Title:       "Request a callback",
		Slug:        "request-callback",
		Description: "Leave your details and an advisor will call you back",
		Purpose:     domain.PurposeLeadCapture,
		Fields: []domain.FormField{
			{
				FieldID:     "name",
				Type:        domain.FieldText,
				Label:       "Your name",
				Name:        "name",
				Validation:  domain.FieldValidation{Required: true, MinLength: intPtr(2), MaxLength: intPtr(80)},
				LeadMapping: domain.MapName,
			},
			{
				FieldID: "phone",
				Type:    domain.FieldPhone,
				Label:   "Phone number",
				Name:    "phone",
				Validation: domain.FieldValidation{
					Required:      true,
					Pattern:       `^\+?[0-9 ()-]{7,20}$`,
					CustomMessage: "Enter a valid phone number",
				},
				LeadMapping: domain.MapPhone,
				Order:       1,
			},
			{
				FieldID:     "email",
				Type:        domain.FieldEmail,
				Label:       "Email",
				Name:        "email",
				LeadMapping: domain.MapEmail,
				Order:       2,
			},
			{
				FieldID: "interested",
				Type:    domain.FieldDropdown,
				Label:   "Interested in",
				Name:    "interested",
				Options: []domain.FieldOption{
					{Label: "Bachelor programs", Value: "bachelor"},
					{Label: "Master programs", Value: "master"},
					{Label: "Something else", Value: "other"},
				},
				Order: 3,
			},
			{
				FieldID:       "other_detail",
				Type:          domain.FieldTextarea,
				Label:         "Tell us more",
				Name:          "other_detail",
				ConditionalOn: &domain.Condition{FieldName: "interested", Value: "other"},
				LeadMapping:   domain.MapMessage,
				Order:         4,
			},
		},
		PostSubmitAction: domain.PostSubmitMessage,
		SuccessMessage:   "Thanks! We will call you back within one business day.",
		Assignments: []domain.PageAssignment{
			{
				PageType:      "college_detail",
				DisplayAs:     domain.DisplayPopup,
				Trigger:       domain.TriggerScroll,
				ScrollPercent: 60,
				ShowOnce:      true,
			},
			{
				PageType:  "home",
				DisplayAs: domain.DisplayInline,
				Trigger:   domain.TriggerImmediate,
			},
		},
	})
	if err != nil {
		log.Fatal("seed form failed: ", err)
	}

	if _, err := formService.SetPublished(ctx, contact.ID, true); err != nil {
		log.Fatal("publish failed: ", err)
	}
	log.Printf("Published form %q at /api/v1/forms/%s", contact.Title, contact.Slug)

	// dev token for poking the admin API without a user store
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	token, err := j.GenerateToken(1, "admin")
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Dev admin token:\n%s", token)
}
