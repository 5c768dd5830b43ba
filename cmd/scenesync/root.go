package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scenekit/scenesync/internal/project"
	"github.com/scenekit/scenesync/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "scenesync",
	Short:         "Reconcile a scene tree with its workspace projection",
	Version:       version.Detailed(),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("project", "p", project.DefaultFileName, "scenesync project file")
	viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	viper.SetEnvPrefix("SCENESYNC")
	viper.AutomaticEnv()
}

func loadProject(cmd *cobra.Command) (*project.Project, error) {
	path := viper.GetString("project")
	p, err := project.Load(path)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), red("error:"), err)
		return nil, err
	}
	return p, nil
}
