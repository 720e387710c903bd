// internal/license/keygen.go
package license

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"

	"github.com/keygen-sh/keygen-go/v3"
	"go.uber.org/zap"
)

// Validator checks the operator license against Keygen before the admin API starts.
type Validator struct {
	logger    *zap.Logger
	accountID string
	productID string

	fingerprint func() (string, error)
}

// NewValidator configures the Keygen client for an account/product pair.
func NewValidator(accountID, productToken, productID string, logger *zap.Logger) *Validator {
	keygen.Account = accountID
	keygen.Product = productID
	keygen.Token = productToken

	return &Validator{
		logger:      logger.Named("license"),
		accountID:   accountID,
		productID:   productID,
		fingerprint: machineFingerprint,
	}
}

// Validate validates licenseKey for this machine, activating it on first use.
func (v *Validator) Validate(ctx context.Context, licenseKey string) error {
	if len(licenseKey) < 8 {
		return errors.New("license key is too short")
	}
	v.logger.Info("Validating license", zap.String("key_prefix", licenseKey[:8]+"..."))

	fingerprint, err := v.fingerprint()
	if err != nil {
		return fmt.Errorf("failed to generate machine fingerprint: %w", err)
	}

	keygen.LicenseKey = licenseKey

	license, err := keygen.Validate(ctx, fingerprint)
	switch {
	case errors.Is(err, keygen.ErrLicenseNotActivated):
		v.logger.Info("License not activated, attempting activation")
		machine, activateErr := license.Activate(ctx, fingerprint)
		if activateErr != nil {
			return fmt.Errorf("failed to activate license: %w", activateErr)
		}
		v.logger.Info("License activated",
			zap.String("machine_id", machine.ID),
			zap.String("fingerprint", fingerprint),
		)

	case errors.Is(err, keygen.ErrLicenseExpired):
		return errors.New("license has expired")

	case err != nil:
		return fmt.Errorf("license validation failed: %w", err)
	}

	if license == nil {
		return errors.New("license not found")
	}

	v.logger.Info("License validated", zap.String("license_id", license.ID))
	return nil
}

// machineFingerprint hashes the hostname, the first hardware address and the OS.
func machineFingerprint() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return fingerprintOf(hostname, hardwareAddrs(), runtime.GOOS), nil
}

func fingerprintOf(hostname string, macs []string, goos string) string {
	mac := "none"
	if len(macs) > 0 {
		mac = macs[0]
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", hostname, mac, goos)))
	return fmt.Sprintf("%x", hash)
}

// hardwareAddrs lists the MACs of active non-loopback interfaces, sorted for stability.
func hardwareAddrs() []string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var macs []string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if addr := iface.HardwareAddr.String(); addr != "" {
			macs = append(macs, addr)
		}
	}
	sort.Strings(macs)
	return macs
}
