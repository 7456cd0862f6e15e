// Command bayesaudit runs a Bayesian post-election risk-limiting audit
// over a directory of election CSVs. It is built as a cobra root command
// with three subcommands: `audit`, whose flags select which pre-audit
// steps to run before entering the stage loop, `show`, and `config`.
package main
