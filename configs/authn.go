package configs

type AuthnConfig struct {
	SessionExpireMin     int    `yaml:"session_expire_min"`
	BcryptCost           int    `yaml:"bcrypt_cost"`
	DefaultAdminPassword string `yaml:"default_admin_password"`
}
