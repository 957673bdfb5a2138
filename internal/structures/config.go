package structures

type Server struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" validate:"required"`
	Port    int    `yaml:"port" validate:"required|uint|min:1"`
}

type ApiConfig struct {
	// BaseURL is either an absolute backend origin or a path prefix resolved
	// against Origin. Empty means plain relative paths.
	BaseURL string `yaml:"baseUrl"`
	Origin  string `yaml:"origin" validate:"required|fullUrl"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver" validate:"required|in:file,memory"`
	FilePath string `yaml:"filePath" validate:"required|unixPath"`
	Size     int    `yaml:"size" validate:"uint"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Api       ApiConfig     `yaml:"api"`
	Storage   StorageConfig `yaml:"storage"`
	WebServer Server        `yaml:"webServer"`
	Logger    LoggerConfig  `yaml:"logger"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
