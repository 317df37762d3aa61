package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidtrack/internal/config"
	"vidtrack/internal/server"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := config.InitConfig(configFile)
		if err != nil {
			logrus.Fatal("initConfig error, ", err.Error())
		}
		if tokenUser == "" {
			logrus.Fatal("--user is required")
		}
		token, err := server.GenToken(tokenUser, conf.JwtSecret, tokenTTL)
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Println(token)
	},
}

func init() {
	tokenCommand.Flags().StringVarP(&tokenUser, "user", "u", "", "User id")
	tokenCommand.Flags().DurationVar(&tokenTTL, "ttl", 7*24*time.Hour, "Token lifetime")
}
