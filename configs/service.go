package configs

type ServiceConfig struct {
	Name     string `yaml:"name"`
	HttpPort string `yaml:"http_port"`
}
