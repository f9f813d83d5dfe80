package soundglide

type Config struct {
	DBPath     string
	TempDir    string
	SampleRate int
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     "soundglide.sqlite3",
		TempDir:    "/tmp",
		SampleRate: 22050,
	}
}
