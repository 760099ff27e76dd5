package probe

import (
	"fmt"
	"io"
	"os"

	"mysql-ops/internal/database"
	"mysql-ops/internal/logging"
)

// Result holds the identity of the server the probe reached
type Result struct {
	ServerVersion string
	Database      string
}

// Probe is a connectivity smoke test: connect, report server identity,
// close. It never retries and treats every failure as diagnostic output
// rather than a fatal condition.
type Probe struct {
	config  database.Config
	service database.DatabaseService
	logger  *logging.Logger
	out     io.Writer
}

// NewProbe creates a probe for the given target
func NewProbe(config database.Config, logger *logging.Logger) *Probe {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Probe{
		config:  config,
		service: database.NewServiceWithLogger(logger),
		logger:  logger,
		out:     os.Stdout,
	}
}

// SetOutput redirects the probe's report, used by tests
func (p *Probe) SetOutput(w io.Writer) {
	p.out = w
}

// SetService substitutes the database service, used by tests
func (p *Probe) SetService(service database.DatabaseService) {
	p.service = service
}

// Run connects, gathers the server version and active database name, and
// closes the connection.
func (p *Probe) Run() (*Result, error) {
	db, err := p.service.Connect(p.config)
	if err != nil {
		return nil, err
	}
	defer p.service.Close(db)

	version, err := p.service.Version(db)
	if err != nil {
		return nil, err
	}

	current, err := p.service.CurrentDatabase(db)
	if err != nil {
		return nil, err
	}

	return &Result{ServerVersion: version, Database: current}, nil
}

// Check runs the probe and prints the outcome. Connection errors are
// printed, not returned: the probe is a fire-and-forget diagnostic and
// does not distinguish failure via its exit code.
func (p *Probe) Check() {
	result, err := p.Run()
	if err != nil {
		fmt.Fprintf(p.out, "Error while connecting to MySQL: %v\n", err)
		return
	}

	fmt.Fprintf(p.out, "Connected to MySQL Server version %s\n", result.ServerVersion)
	fmt.Fprintf(p.out, "Connected to database: %s\n", result.Database)
	fmt.Fprintln(p.out, "MySQL connection is closed")
}
