package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Ad-wrapped download gateways. Artifacts must come from the repository host itself.
var adGatewayHosts = []string{
	"adfoc.us",
	"adf.ly",
	"linkvertise.com",
	"ouo.io",
}

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("direct_host", validateDirectHost)
	_ = validate.RegisterValidation("mcversion", validateVersion)
	_ = validate.RegisterValidation("build_id", validateBuildID)
}

// Struct validates s using the registered rules.
func Struct(s any) error {
	return validate.Struct(s)
}

// ValidateVersions checks every coarse identifier.
func ValidateVersions(versions []string) error {
	for _, v := range versions {
		if err := validate.Var(v, "required,mcversion"); err != nil {
			return fmt.Errorf("invalid version %q: %w", v, err)
		}
	}
	return nil
}

// ValidateBuildID checks a fine identifier scraped from a listing page.
func ValidateBuildID(id string) error {
	if err := validate.Var(id, "required,build_id"); err != nil {
		return fmt.Errorf("invalid build %q: %w", id, err)
	}
	return nil
}

// ValidateDirectURL checks that u points straight at an artifact host.
func ValidateDirectURL(u string) error {
	if err := validate.Var(u, "required,direct_host"); err != nil {
		return fmt.Errorf("invalid URL %q: %w", u, err)
	}
	return nil
}

func validateDirectHost(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, gw := range adGatewayHosts {
		if host == gw || strings.HasSuffix(host, "."+gw) {
			return false
		}
	}

	return true
}

// Coarse identifiers end up in directory names and URL paths.
func validateVersion(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if strings.ContainsAny(v, `/\ `) {
		return false
	}
	_, err := semver.NewVersion(v)
	return err == nil
}

// Fine identifiers become one path segment below the coarse directory.
func validateBuildID(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if strings.ContainsAny(v, `/\`) || strings.Contains(v, "..") {
		return false
	}
	return !strings.ContainsFunc(v, unicode.IsSpace)
}
