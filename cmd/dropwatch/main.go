// dropwatch reports the newest file in every watched SFTP folder.
package main

func main() {
	Execute()
}
