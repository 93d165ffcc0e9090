// Package toolchain drives the JDK tools a build needs: the Java compiler
// and the JUnit Platform console launcher. Processes are started through a
// Runner so tests can substitute a fake.
package toolchain
