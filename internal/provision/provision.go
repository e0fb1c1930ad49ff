// Package provision runs the fixed, ordered sequence of idempotent setup
// steps that prepares a sample database: resolve a driver, verify the seed
// script, collect the administrative credential, test connectivity, recreate
// the target database, load the seed, verify table counts, and emit the
// application configuration artifact. The sequence is fail-fast with no
// retries and no rollback.
package provision

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seedctl/seedctl/internal/dbclient"
	"github.com/seedctl/seedctl/internal/envfile"
	"github.com/seedctl/seedctl/internal/expect"
	"github.com/seedctl/seedctl/internal/secret"
	"github.com/seedctl/seedctl/internal/seedfile"
)

// Config is the immutable input of a single run.
type Config struct {
	DatabaseURL  string
	DatabaseName string
	SeedPath     string
	OutputPath   string

	GoogleAPIKey       string
	MaxQueryResults    int
	EnableQueryLogging bool

	// StrictSeed turns seed lint errors into warnings-free aborts instead of
	// proceeding to the load step.
	StrictSeed bool

	// Expectations optionally names tables and minimum row counts checked by
	// the verify step.
	Expectations *expect.Expectations
}

// CredentialFunc obtains the administrative password. The sequencer wipes the
// returned value on every exit path.
type CredentialFunc func() (*secret.Value, error)

// ClientFactory constructs a database client; replaced in tests.
type ClientFactory func(connStr, password string) (dbclient.Client, error)

// Options carries the run's collaborators.
type Options struct {
	// Credential is consulted only for drivers that authenticate with a
	// password. Required for those drivers.
	Credential CredentialFunc

	// NewClient defaults to dbclient.New.
	NewClient ClientFactory

	// OnStep, when set, observes each completed step in order.
	OnStep func(StepResult)
}

// Step names, in execution order.
const (
	StepResolveDriver     = "resolve driver"
	StepCheckSeedFile     = "check seed file"
	StepCollectCredential = "collect credential"
	StepTestConnection    = "test connection"
	StepRecreateDatabase  = "recreate database"
	StepLoadSeed          = "load seed data"
	StepVerify            = "verify"
	StepWriteArtifact     = "write configuration"
)

type runState struct {
	cfg  Config
	opts Options

	driverType dbclient.DriverType
	script     string
	credential *secret.Value
	client     dbclient.Client
}

type step struct {
	name string
	run  func(ctx context.Context, st *runState, out *Outcome) (string, *Failure)
}

// Run executes the provisioning sequence. It is a fold over the ordered step
// list: the first failing step aborts everything after it.
func Run(ctx context.Context, cfg Config, opts Options) Outcome {
	if opts.NewClient == nil {
		opts.NewClient = dbclient.New
	}

	st := &runState{cfg: cfg, opts: opts}
	defer func() {
		st.credential.Wipe()
		if st.client != nil {
			_ = st.client.Close()
		}
	}()

	out := Outcome{}
	steps := []step{
		{StepResolveDriver, stepResolveDriver},
		{StepCheckSeedFile, stepCheckSeedFile},
		{StepCollectCredential, stepCollectCredential},
		{StepTestConnection, stepTestConnection},
		{StepRecreateDatabase, stepRecreateDatabase},
		{StepLoadSeed, stepLoadSeed},
		{StepVerify, stepVerify},
		{StepWriteArtifact, stepWriteArtifact},
	}

	for _, s := range steps {
		detail, failure := s.run(ctx, st, &out)
		result := StepResult{Name: s.name, OK: failure == nil, Detail: detail}
		if failure != nil {
			result.Diagnostic = failure.Err.Error()
		}
		out.Steps = append(out.Steps, result)
		if opts.OnStep != nil {
			opts.OnStep(result)
		}

		if failure != nil {
			out.Success = false
			out.FailedStep = failure.Step
			out.FailureKind = failure.Kind
			out.Diagnostic = failure.Err.Error()
			return out
		}
	}

	out.Success = true
	return out
}

func stepResolveDriver(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	driverType, err := dbclient.Detect(st.cfg.DatabaseURL)
	if err != nil {
		return "", &Failure{Kind: FailClientNotFound, Step: StepResolveDriver, Err: err}
	}
	st.driverType = driverType
	return string(driverType), nil
}

func stepCheckSeedFile(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	script, err := seedfile.Check(st.cfg.SeedPath)
	if err != nil {
		return "", &Failure{Kind: FailSeedFileMissing, Step: StepCheckSeedFile, Err: err}
	}
	st.script = script

	// Lint with the PostgreSQL parser. Other dialects may legitimately fail
	// the parse, so lint is advisory unless StrictSeed is set on a postgres
	// target.
	if st.driverType == dbclient.DriverPostgres {
		result := seedfile.Lint(st.cfg.SeedPath, script)
		if !result.Valid {
			if st.cfg.StrictSeed {
				return "", &Failure{
					Kind: FailSeedFileMissing,
					Step: StepCheckSeedFile,
					Err:  fmt.Errorf("seed file failed validation: %s", result.Issues[0].Message),
				}
			}
			for _, issue := range result.Issues {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("seed lint: %s:%d: %s", issue.File, issue.Line, issue.Message))
			}
		}
	}

	return st.cfg.SeedPath, nil
}

func stepCollectCredential(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	if !dbclient.RequiresPassword(st.driverType) {
		return "not required for " + string(st.driverType), nil
	}

	// A password embedded in the connection URL counts as pre-supplied.
	if u, err := url.Parse(st.cfg.DatabaseURL); err == nil && u.User != nil {
		if pw, ok := u.User.Password(); ok && pw != "" {
			st.credential = secret.New(pw)
			return "from connection URL", nil
		}
	}

	if st.opts.Credential == nil {
		return "", &Failure{
			Kind: FailAuthConnectivity,
			Step: StepCollectCredential,
			Err:  fmt.Errorf("no credential source configured"),
		}
	}

	cred, err := st.opts.Credential()
	if err != nil {
		return "", &Failure{Kind: FailAuthConnectivity, Step: StepCollectCredential, Err: err}
	}
	st.credential = cred
	return "collected", nil
}

func stepTestConnection(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	client, err := st.opts.NewClient(st.cfg.DatabaseURL, st.credential.String())
	if err != nil {
		return "", &Failure{Kind: FailAuthConnectivity, Step: StepTestConnection, Err: err}
	}
	st.client = client

	if err := client.Ping(ctx); err != nil {
		return "", &Failure{
			Kind: FailAuthConnectivity,
			Step: StepTestConnection,
			Err:  fmt.Errorf("cannot reach %s: %w", RedactURL(st.cfg.DatabaseURL), err),
		}
	}

	version, err := client.ProbeVersion(ctx)
	if err != nil {
		return "", &Failure{Kind: FailAuthConnectivity, Step: StepTestConnection, Err: err}
	}
	out.ServerVersion = version
	return version, nil
}

func stepRecreateDatabase(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	// Drop is best-effort; a failed drop is recorded but never fatal.
	if err := st.client.DropDatabase(ctx, st.cfg.DatabaseName); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("drop database: %v", err))
	}

	if err := st.client.CreateDatabase(ctx, st.cfg.DatabaseName); err != nil {
		return "", &Failure{Kind: FailDatabaseCreation, Step: StepRecreateDatabase, Err: err}
	}
	return st.cfg.DatabaseName, nil
}

func stepLoadSeed(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	// A failed load is surfaced as a warning-level outcome rather than a run
	// failure: the database exists and the artifact is still written.
	if err := st.client.RunScript(ctx, st.cfg.DatabaseName, st.script); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("seed load: %v", err))
		return "load failed; continuing", nil
	}
	return "loaded " + st.cfg.SeedPath, nil
}

func stepVerify(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	count, err := st.client.CountTables(ctx, st.cfg.DatabaseName)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("verify: %v", err))
		return "table count unavailable", nil
	}
	out.TableCount = count

	if st.cfg.Expectations != nil {
		for _, exp := range st.cfg.Expectations.Tables {
			rows, err := st.client.CountRows(ctx, st.cfg.DatabaseName, exp.Name)
			if err != nil {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("verify: table %s: %v", exp.Name, err))
				continue
			}
			if rows < exp.MinRows {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("verify: table %s has %d rows, expected at least %d", exp.Name, rows, exp.MinRows))
			}
		}
	}

	return fmt.Sprintf("%d tables", count), nil
}

func stepWriteArtifact(ctx context.Context, st *runState, out *Outcome) (string, *Failure) {
	endpoint := dbclient.EndpointOf(st.client)
	artifact := envfile.Artifact{
		GoogleAPIKey:       st.cfg.GoogleAPIKey,
		Host:               endpoint.Host,
		Port:               endpoint.Port,
		Name:               st.cfg.DatabaseName,
		User:               endpoint.User,
		Password:           st.credential.String(),
		MaxQueryResults:    st.cfg.MaxQueryResults,
		EnableQueryLogging: st.cfg.EnableQueryLogging,
	}

	if err := artifact.Write(st.cfg.OutputPath); err != nil {
		return "", &Failure{Kind: FailArtifactWrite, Step: StepWriteArtifact, Err: err}
	}
	out.ArtifactPath = st.cfg.OutputPath
	return st.cfg.OutputPath, nil
}

// RedactURL strips any password from a connection URL so diagnostics never
// leak the credential.
func RedactURL(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}
