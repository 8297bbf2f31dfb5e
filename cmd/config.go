package cmd

import (
	"fmt"
	"strings"

	"github.com/mikaelmello/pingtrace/core"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "pingtrace"

	addressFlag   = "address"
	typeFlag      = "type"
	countFlag     = "count"
	floodFlag     = "flood"
	maxHopsFlag   = "max-hops"
	verboseFlag   = "verbose"
	waitMatchFlag = "wait-match"
)

// newViper binds the flags of cmd so that each one can also be set as
// PINGTRACE_<FLAG>, dashes replaced by underscores.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	vp := viper.New()
	if err := vp.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	vp.SetEnvPrefix(envPrefix)
	vp.AutomaticEnv()
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return vp, nil
}

// commonSettings reads the settings shared by both tools
func commonSettings(vp *viper.Viper) (*core.Settings, string, error) {
	address := vp.GetString(addressFlag)
	if address == "" {
		return nil, "", fmt.Errorf("%w: an address is required (use -a)", core.ErrUsage)
	}

	settings := core.DefaultSettings()
	settings.WaitForMatch = vp.GetBool(waitMatchFlag)
	if vp.GetBool(verboseFlag) {
		settings.LoggingLevel = uint32(log.DebugLevel)
	}

	return settings, address, nil
}

// pingSettings reads the settings of the ping command
func pingSettings(vp *viper.Viper) (*core.Settings, string, error) {
	settings, address, err := commonSettings(vp)
	if err != nil {
		return nil, "", err
	}

	if !vp.IsSet(typeFlag) {
		return nil, "", fmt.Errorf("%w: a type is required (use -t with 4 or 6)", core.ErrUsage)
	}
	family, err := core.ParseFamily(vp.GetInt(typeFlag))
	if err != nil {
		return nil, "", err
	}

	settings.Family = family
	settings.Count = vp.GetInt(countFlag)
	settings.Flood = vp.GetBool(floodFlag)

	return settings, address, nil
}

// tracerouteSettings reads the settings of the traceroute command
func tracerouteSettings(vp *viper.Viper) (*core.Settings, string, error) {
	settings, address, err := commonSettings(vp)
	if err != nil {
		return nil, "", err
	}

	settings.MaxHops = vp.GetInt(maxHopsFlag)

	return settings, address, nil
}
