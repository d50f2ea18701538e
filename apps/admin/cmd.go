package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/pressly/goose/v3"
	"golang.org/x/term"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/user"
	"github.com/brightloop/brightloop/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword         // mockable
	gooseRunFunc     = goose.Run                 // mockable
	createDBFunc     = database.CreateIfNotExist // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	db     *sql.DB
	usrSvc user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL [-admin]  - create an approved user (the password is prompted)")
	fmt.Println("  resetpassword -email EMAIL     - reset a user's password (the password is prompted)")
	fmt.Println("  approve -email EMAIL           - approve a pending school admin")
	fmt.Println("  createdb                       - create the app database and user if they do not exist")
	fmt.Println("  migrate COMMAND [ARGS]         - run a goose command on the embedded migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Make the user a system admin.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	approveCmd := flag.NewFlagSet("approve", flag.ContinueOnError)
	approveEmail := approveCmd.String("email", "", "The user's email.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "approve":
		if err := approveCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *approveEmail == "" {
			approveCmd.Usage()
			return errHelp
		}
		return cli.approve(*approveEmail)

	case "createdb":
		return createDBFunc(cli.conf)

	case "migrate":
		if len(args) < 3 {
			fmt.Println("Usage: migrate up|up-by-one|up-to|down|down-to|redo|reset|status|version|fix [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
