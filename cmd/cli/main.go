package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"ecocrm/app/database"
	"ecocrm/app/handlers"
	"ecocrm/app/platform/engagement"
	"ecocrm/pkg/utils"
)

var (
	apiBaseURL string
	token      string
)

type ResponseError struct {
	Message string `json:"message"`
}

var apiServiceBase = func() *resty.Client {
	client := resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetError(&ResponseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				return fmt.Errorf(resp.Error().(*ResponseError).Message)
			}

			return nil
		})
	if token != "" {
		client.SetAuthToken(token)
	}
	return client
}

var rootCmd = &cobra.Command{
	Use:   "ecocrm",
	Short: "EcoSystem CRM CLI",
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email> <full name>",
	Short: "Register a new member account",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		email := args[0]
		fullName := args[1]
		username := utils.UsernameFromEmail(email)
		password := utils.GenerateRandomString(12)

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"email":     email,
				"username":  username,
				"password":  password,
				"full_name": fullName,
			}).
			SetResult(&database.User{}).
			Post("/users")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*database.User)

		fmt.Println("User ID  :", user.ID)
		fmt.Println("Email    :", user.Email)
		fmt.Println("Username :", user.Username)
		fmt.Println("Role     :", user.Role)
		fmt.Println("Password :", password)
	},
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote <user_id>",
	Short: "Grant a user the admin role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&database.User{}).
			Post(fmt.Sprintf("/users/%s/promote", args[0]))

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*database.User)

		fmt.Println("User ID :", user.ID)
		fmt.Println("Username:", user.Username)
		fmt.Println("Role    :", user.Role)
	},
}

var userProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the profile behind the token",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&database.User{}).
			Get("/users/me")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*database.User)

		fmt.Println("User ID  :", user.ID)
		fmt.Println("Email    :", user.Email)
		fmt.Println("Username :", user.Username)
		fmt.Println("Role     :", user.Role)
		fmt.Println("Logins   :", user.Logins)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Exchange credentials for a bearer token",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"username": args[0],
				"password": args[1],
			}).
			SetResult(&handlers.AuthToken{}).
			Post("/token")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		result := resp.Result().(*handlers.AuthToken)

		fmt.Println("Token :", result.AccessToken)
		fmt.Println("Role  :", result.UserType)
	},
}

var engagementCmd = &cobra.Command{
	Use:   "engagement",
	Short: "Engagement analytics",
}

var engagementStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the engagement dashboard aggregates",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&engagement.Stats{}).
			Get("/engagement/stats")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		stats := resp.Result().(*engagement.Stats)

		fmt.Println("Total users        :", stats.TotalUsers)
		fmt.Println("Active this month  :", stats.ActiveUsersThisMonth)
		fmt.Println("Total logins       :", stats.TotalLogins)
		fmt.Println("Total RSVPs        :", stats.TotalRSVPs)
		fmt.Println("Mentor requests    :", stats.TotalMentorRequests)

		if len(stats.TopMentorsByRequests) > 0 {
			fmt.Println("\nTop mentors")
			for _, mentor := range stats.TopMentorsByRequests {
				fmt.Printf("  - %s (%d requests)\n", mentor.Name, mentor.Requests)
			}
		}
	},
}

func main() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userPromoteCmd)
	userCmd.AddCommand(userProfileCmd)
	engagementCmd.AddCommand(engagementStatsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(engagementCmd)

	rootCmd.PersistentFlags().StringVarP(&apiBaseURL, "url", "u", "http://localhost:8080/api", "API base URL")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "Bearer token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
