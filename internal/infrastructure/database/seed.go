package database

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sangkips/optica-api/internal/config"
	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/pkg/utils"
)

// Permission names checked by the routes
const (
	PermViewDashboard       = "view-dashboard"
	PermManageProducts      = "manage-products"
	PermManageClients       = "manage-clients"
	PermManageReceipts      = "manage-receipts"
	PermManageSubscriptions = "manage-subscriptions"
)

var ownerPermissions = []string{
	PermViewDashboard,
	PermManageProducts,
	PermManageClients,
	PermManageReceipts,
}

// SeedDefaultData seeds permissions, roles and the super admin account
func SeedDefaultData(db *gorm.DB, admin config.AdminConfig) error {
	log.Info().Msg("Seeding default data")

	names := append([]string{}, ownerPermissions...)
	names = append(names, PermManageSubscriptions)

	for _, name := range names {
		perm := entity.Permission{Name: name, GuardName: "web"}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			log.Warn().Err(err).Str("permission", name).Msg("Failed to create permission")
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return err
	}

	ensureRole(db, entity.RoleSuperAdmin, allPermissions)
	ensureRole(db, entity.RoleOwner, pick(allPermissions, ownerPermissions))

	if admin.Email != "" && admin.Password != "" {
		seedSuperAdmin(db, admin)
	}

	log.Info().Msg("Default data seeding completed")
	return nil
}

func ensureRole(db *gorm.DB, name string, perms []entity.Permission) {
	var role entity.Role
	if err := db.Where("name = ?", name).First(&role).Error; err == nil {
		return
	}
	role = entity.Role{Name: name, GuardName: "web", Permissions: perms}
	if err := db.Create(&role).Error; err != nil {
		log.Warn().Err(err).Str("role", name).Msg("Failed to create role")
	}
}

func pick(all []entity.Permission, names []string) []entity.Permission {
	var out []entity.Permission
	for _, name := range names {
		for _, p := range all {
			if p.Name == name {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func seedSuperAdmin(db *gorm.DB, admin config.AdminConfig) {
	var existing entity.User
	if err := db.Where("email = ?", admin.Email).First(&existing).Error; err == nil {
		log.Debug().Str("email", admin.Email).Msg("Super admin already exists")
		return
	}

	var role entity.Role
	if err := db.Where("name = ?", entity.RoleSuperAdmin).First(&role).Error; err != nil {
		log.Warn().Err(err).Msg("Super admin role missing")
		return
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to hash admin password")
		return
	}

	name := admin.Name
	if name == "" {
		name = "Super Admin"
	}
	first, last, _ := strings.Cut(name, " ")

	now := time.Now()
	user := entity.User{
		FirstName: first,
		LastName:  last,
		Username:  utils.UsernameFromEmail(admin.Email),
		Email:     admin.Email,
		Password:  hashed,
		Roles:     []entity.Role{role},
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&entity.Subscription{
			UserID:    user.ID,
			Status:    enum.SubscriptionStatusActive,
			Type:      enum.SubscriptionTypeLifetime,
			StartDate: now,
			EndDate:   now.AddDate(100, 0, 0),
		}).Error
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create super admin user")
		return
	}
	log.Info().Str("email", admin.Email).Msg("Super admin user created")
}
