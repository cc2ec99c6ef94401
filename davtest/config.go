package davtest

type config struct {
	classes []string
	allow   []string
	users   map[string]string
}

type Option func(c *config)

// WithClasses sets the compliance classes sent in the DAV header.
func WithClasses(cls ...string) Option {
	return func(c *config) {
		c.classes = cls
	}
}

func WithAllowMethods(ms ...string) Option {
	return func(c *config) {
		c.allow = ms
	}
}

// WithUser requires basic auth, may be given several times.
func WithUser(user string, pass string) Option {
	return func(c *config) {
		if c.users == nil {
			c.users = make(map[string]string)
		}
		c.users[user] = pass
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		classes: []string{"1", "2"},
		allow:   AllowMethods,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
