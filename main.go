package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/convoflow/convoflow/agent"
	"github.com/convoflow/convoflow/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "convoflow", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("wa-base-url", "https://graph.facebook.com/v20.0", "whatsapp graph api base url")
	cmd.Flags().Int("wa-timeout", 30, "whatsapp send timeout in seconds")
	cmd.Flags().String("wa-verify-token", "", "webhook verification token")
	cmd.Flags().Int("max-steps", 200, "step ceiling per run, the cycle guard")
	cmd.Flags().Int("max-wait-ms", 60000, "upper bound for a wait node delay")
	cmd.Flags().Int("capture-expiry-min", 30, "minutes a capture node waits for a text reply")
	cmd.Flags().String("frontend-url", "http://localhost:3000", "base url for payment links")
	cmd.Flags().String("currency", "INR", "order currency")
	cmd.Flags().Int("scheduler-tick", 60, "scheduler tick interval in seconds")
	cmd.Flags().Int("reaper-tick", 60, "expiry reaper tick interval in seconds")
	cmd.Flags().Int("dispatch-capacity", 512, "inbound dispatch queue capacity")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.WhatsApp.BaseURL = viper.GetString("wa-base-url")
	c.cfg.WhatsApp.TimeoutSeconds = viper.GetInt("wa-timeout")
	c.cfg.WhatsApp.VerifyToken = viper.GetString("wa-verify-token")
	c.cfg.Engine.MaxSteps = viper.GetInt("max-steps")
	c.cfg.Engine.MaxWaitMs = viper.GetInt("max-wait-ms")
	c.cfg.Engine.CaptureExpiryMinutes = viper.GetInt("capture-expiry-min")
	c.cfg.Commerce.FrontendURL = viper.GetString("frontend-url")
	c.cfg.Commerce.Currency = viper.GetString("currency")
	c.cfg.SchedulerTickSec = viper.GetInt("scheduler-tick")
	c.cfg.ReaperTickSec = viper.GetInt("reaper-tick")
	c.cfg.DispatchCapacity = viper.GetInt("dispatch-capacity")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		panic(err)
	}
	err = agent.Start()
	if err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "convoflow",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
