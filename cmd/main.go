/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doozez/doozez"
	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/internal/notification"
)

// Doozez represents the CLI application, encapsulating the root Cobra command.
type Doozez struct {
	cmd *cobra.Command
}

// doozezInstance holds the service instance and its configuration, shared by
// every subcommand after preRun.
type doozezInstance struct {
	doozez *doozez.Doozez
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service layer before any
// command runs.
func preRun(app *doozezInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("doozez.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newDoozez, err := setupDoozez(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.doozez = newDoozez
		app.cnf = cnf

		return nil
	}
}

// setupDoozez connects the datasource and builds the service layer from it.
func setupDoozez(cfg *config.Configuration) (*doozez.Doozez, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newDoozez, err := doozez.NewDoozez(db)
	if err != nil {
		return nil, fmt.Errorf("error creating doozez: %v", err)
	}
	return newDoozez, nil
}

// NewCLI creates the command-line interface for the doozez application.
func NewCLI() *Doozez {
	var configFile string
	d := &doozezInstance{}

	var rootCmd = &cobra.Command{
		Use:   "doozez",
		Short: "Group payment coordination server",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./doozez.json", "Configuration file for doozez")

	rootCmd.PersistentPreRunE = preRun(d)

	rootCmd.AddCommand(serverCommands(d))
	rootCmd.AddCommand(workerCommands(d))
	rootCmd.AddCommand(migrateCommands(d))
	rootCmd.AddCommand(configCommands())

	return &Doozez{cmd: rootCmd}
}

func (w Doozez) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
