package configs

type MongoDBConfig struct {
	Uri      string `yaml:"uri"`
	UriFile  string `yaml:"uri_file"` // path to a secrets file holding the connection string
	Database string `yaml:"database"`
}
