package services

import "fmt"

func Greeting(name string) string {
	return fmt.Sprintf("Welcome back, %s!", name)
}
