package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"hrdesk/internal/config"
	"hrdesk/internal/database"
	"hrdesk/internal/domain"
	jwtsvc "hrdesk/internal/pkg/jwt"
	"hrdesk/internal/repository"

	"github.com/joho/godotenv"
)

type seedUser struct {
	id   string
	role domain.Role
}

var rooms = []domain.Room{
	{Name: "Falcon", Location: "3rd floor, east wing", Capacity: 8, IsActive: true},
	{Name: "Heron", Location: "3rd floor, west wing", Capacity: 4, IsActive: true},
	{Name: "Kestrel", Location: "2nd floor", Capacity: 12, IsActive: true},
	{Name: "Osprey", Location: "Basement (under renovation)", Capacity: 20, IsActive: false},
}

var users = []seedUser{
	{id: "admin-1", role: domain.RoleAdmin},
	{id: "leader-1", role: domain.RoleLeader},
	{id: "employee-1", role: domain.RoleEmployee},
	{id: "employee-2", role: domain.RoleEmployee},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv_load_failed error=%q", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	ctx := context.Background()
	roomRepo := repository.NewRoomRepository(db)
	roleRepo := repository.NewUserRoleRepository(db)

	existing, err := roomRepo.ListAll(ctx)
	if err != nil {
		log.Fatal("List rooms failed:", err)
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[r.Name] = true
	}

	log.Println("Creating rooms...")
	for i := range rooms {
		if known[rooms[i].Name] {
			continue
		}
		if err := roomRepo.Create(ctx, &rooms[i]); err != nil {
			log.Fatalf("Create room %s failed: %v", rooms[i].Name, err)
		}
		log.Printf("room id=%s name=%s active=%t", rooms[i].ID, rooms[i].Name, rooms[i].IsActive)
	}

	log.Println("Assigning roles...")
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, u := range users {
		if err := roleRepo.Assign(ctx, u.id, u.role); err != nil {
			log.Fatalf("Assign role %s to %s failed: %v", u.role, u.id, err)
		}
		held, err := roleRepo.RolesOf(ctx, u.id)
		if err != nil {
			log.Fatalf("Read roles of %s failed: %v", u.id, err)
		}
		if len(held) > 1 {
			log.Printf("seed_role_drift user_id=%s token_role=%s stored_roles=%v", u.id, u.role, held)
		}
		token, err := j.GenerateToken(u.id, string(u.role))
		if err != nil {
			log.Fatalf("Token for %s failed: %v", u.id, err)
		}
		fmt.Printf("%-11s %-9s %s\n", u.id, u.role, token)
	}

	log.Println("Seed completed")
}
