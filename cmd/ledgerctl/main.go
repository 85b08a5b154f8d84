// ledgerctl is the operations CLI: it bootstraps the platform, provisions
// tenants, issues service tokens, and runs ledger audits against the same
// database the server uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/core/services"
	"github.com/meridianfx/ledger-core/internal/dto"
	"github.com/meridianfx/ledger-core/internal/platform/config"
	"github.com/meridianfx/ledger-core/internal/repositories/database/pgsql"
	"github.com/meridianfx/ledger-core/pkg/database"
)

// cliCaller is the synthetic platform identity every command runs under.
var cliCaller = domain.CallContext{
	UserID: "ledgerctl",
	Role:   domain.RoleSuperAdmin,
}

type env struct {
	cfg       *config.Config
	repos     portsrepo.RepositoryProvider
	container *portssvc.ServiceContainer
	close     func()
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	repos := pgsql.NewRepositoryProvider(pool)
	return &env{
		cfg:       cfg,
		repos:     repos,
		container: services.NewServiceContainer(cfg, repos),
		close:     pool.Close,
	}, nil
}

// bootstrapCmd creates the platform super admin and registers the starter
// currency set. Safe to re-run; existing rows are left alone.
type bootstrapCmd struct {
	email    string
	password string
	name     string
}

func (*bootstrapCmd) Name() string     { return "bootstrap" }
func (*bootstrapCmd) Synopsis() string { return "create the platform admin and starter currencies" }
func (*bootstrapCmd) Usage() string {
	return "bootstrap -email <email> -password <password> [-name <name>]\n"
}

func (c *bootstrapCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "platform admin email")
	f.StringVar(&c.password, "password", "", "platform admin password")
	f.StringVar(&c.name, "name", "Platform Admin", "platform admin display name")
}

func (c *bootstrapCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" || c.password == "" {
		fmt.Fprintln(os.Stderr, "bootstrap: -email and -password are required")
		return subcommands.ExitUsageError
	}
	e, err := connect(ctx)
	if err != nil {
		return fail(err)
	}
	defer e.close()

	starter := []domain.Currency{
		{CurrencyCode: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2},
		{CurrencyCode: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2},
		{CurrencyCode: "GBP", Name: "Pound Sterling", Symbol: "£", DecimalPlaces: 2},
		{CurrencyCode: "AED", Name: "UAE Dirham", Symbol: "د.إ", DecimalPlaces: 2},
		{CurrencyCode: "IRR", Name: "Iranian Rial", Symbol: "﷼", DecimalPlaces: 0},
	}
	for _, currency := range starter {
		if err := e.container.Currency.RegisterCurrency(ctx, cliCaller, currency); err != nil {
			return fail(fmt.Errorf("register %s: %w", currency.CurrencyCode, err))
		}
	}

	if _, err := e.repos.UserRepo.FindUserByEmail(ctx, nil, c.email); err == nil {
		fmt.Println("platform admin already exists, currencies refreshed")
		return subcommands.ExitSuccess
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.password), bcrypt.DefaultCost)
	if err != nil {
		return fail(err)
	}
	now := time.Now()
	admin := domain.User{
		UserID:       uuid.NewString(),
		TenantID:     nil,
		Name:         c.name,
		Email:        c.email,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     cliCaller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: cliCaller.UserID,
		},
	}
	if err := e.repos.UserRepo.SaveUser(ctx, admin); err != nil {
		return fail(err)
	}
	fmt.Printf("platform admin created: %s\n", admin.UserID)
	return subcommands.ExitSuccess
}

// initTenantCmd provisions a tenant with its default chart of accounts and a
// tenant admin user.
type initTenantCmd struct {
	name          string
	slug          string
	baseCurrency  string
	adminEmail    string
	adminPassword string
}

func (*initTenantCmd) Name() string     { return "init-tenant" }
func (*initTenantCmd) Synopsis() string { return "provision a tenant and its admin user" }
func (*initTenantCmd) Usage() string {
	return "init-tenant -name <name> -slug <slug> -base-currency <code> -admin-email <email> -admin-password <password>\n"
}

func (c *initTenantCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "tenant display name")
	f.StringVar(&c.slug, "slug", "", "tenant slug")
	f.StringVar(&c.baseCurrency, "base-currency", "USD", "tenant base currency code")
	f.StringVar(&c.adminEmail, "admin-email", "", "tenant admin email")
	f.StringVar(&c.adminPassword, "admin-password", "", "tenant admin password")
}

func (c *initTenantCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.slug == "" || c.adminEmail == "" || c.adminPassword == "" {
		fmt.Fprintln(os.Stderr, "init-tenant: -name, -slug, -admin-email, and -admin-password are required")
		return subcommands.ExitUsageError
	}
	e, err := connect(ctx)
	if err != nil {
		return fail(err)
	}
	defer e.close()

	tenant, err := e.container.Tenant.CreateTenant(ctx, cliCaller, dto.CreateTenantRequest{
		Name:         c.name,
		Slug:         c.slug,
		BaseCurrency: strings.ToUpper(c.baseCurrency),
	})
	if err != nil {
		return fail(err)
	}

	adminCaller := cliCaller
	adminCaller.TenantID = tenant.TenantID
	admin, err := e.container.Identity.CreateUser(ctx, adminCaller, dto.CreateUserRequest{
		Name:     c.name + " Admin",
		Email:    c.adminEmail,
		Password: c.adminPassword,
		Role:     string(domain.RoleTenantAdmin),
	})
	if err != nil {
		return fail(err)
	}

	fmt.Printf("tenant created: %s (slug %s)\n", tenant.TenantID, tenant.Slug)
	fmt.Printf("tenant admin created: %s\n", admin.UserID)
	return subcommands.ExitSuccess
}

// issueTokenCmd signs a token for an existing user, for service integrations
// and break-glass access.
type issueTokenCmd struct {
	userID string
	ttl    time.Duration
}

func (*issueTokenCmd) Name() string     { return "issue-token" }
func (*issueTokenCmd) Synopsis() string { return "issue a bearer token for a user" }
func (*issueTokenCmd) Usage() string {
	return "issue-token -user <userID> [-ttl <duration>]\n"
}

func (c *issueTokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.userID, "user", "", "user ID to issue the token for")
	f.DurationVar(&c.ttl, "ttl", time.Hour, "token lifetime")
}

func (c *issueTokenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.userID == "" {
		fmt.Fprintln(os.Stderr, "issue-token: -user is required")
		return subcommands.ExitUsageError
	}
	e, err := connect(ctx)
	if err != nil {
		return fail(err)
	}
	defer e.close()

	user, err := e.repos.UserRepo.FindUserByID(ctx, c.userID)
	if err != nil {
		return fail(err)
	}
	token, err := e.container.Identity.GenerateToken(user, c.ttl)
	if err != nil {
		return fail(err)
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}

// auditCmd runs the zero-sum check over a tenant's ledger.
type auditCmd struct {
	tenantID string
	asOf     string
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "verify a tenant's ledger sums to zero" }
func (*auditCmd) Usage() string {
	return "audit -tenant <tenantID> [-as-of <RFC3339>]\n"
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tenantID, "tenant", "", "tenant ID to audit")
	f.StringVar(&c.asOf, "as-of", "", "audit as of this instant, defaults to now")
}

func (c *auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.tenantID == "" {
		fmt.Fprintln(os.Stderr, "audit: -tenant is required")
		return subcommands.ExitUsageError
	}
	asOf := time.Now()
	if c.asOf != "" {
		parsed, err := time.Parse(time.RFC3339, c.asOf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "audit: -as-of must be RFC3339")
			return subcommands.ExitUsageError
		}
		asOf = parsed
	}
	e, err := connect(ctx)
	if err != nil {
		return fail(err)
	}
	defer e.close()

	caller := cliCaller
	caller.TenantID = c.tenantID
	net, err := e.container.Ledger.AuditZeroSum(ctx, caller, asOf)
	if err != nil {
		return fail(err)
	}
	if !net.Equal(decimal.Zero) {
		fmt.Printf("UNHEALTHY: ledger nets to %s as of %s\n", net, asOf.Format(time.RFC3339))
		return subcommands.ExitFailure
	}
	fmt.Printf("OK: ledger nets to zero as of %s\n", asOf.Format(time.RFC3339))
	return subcommands.ExitSuccess
}

func fail(err error) subcommands.ExitStatus {
	slog.Error("command failed", slog.String("error", err.Error()))
	return subcommands.ExitFailure
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&bootstrapCmd{}, "platform")
	subcommands.Register(&initTenantCmd{}, "platform")
	subcommands.Register(&issueTokenCmd{}, "platform")
	subcommands.Register(&auditCmd{}, "ledger")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
