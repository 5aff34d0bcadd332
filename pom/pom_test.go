package pom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapsam/gradle/module"
)

const samplePOM = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.2.0</version>
  <properties>
    <slf4j.version>1.7.36</slf4j.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>${slf4j.version}</version>
    </dependency>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>31.1-jre</version>
      <scope>runtime</scope>
      <exclusions>
        <exclusion>
          <groupId>com.google.code.findbugs</groupId>
          <artifactId>jsr305</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>org.projectlombok</groupId>
      <artifactId>lombok</artifactId>
      <version>1.18.30</version>
      <optional>true</optional>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.fasterxml.jackson.core</groupId>
        <artifactId>jackson-databind</artifactId>
        <version>2.15.2</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

func TestParse(t *testing.T) {
	md, err := Parse([]byte(samplePOM))
	require.NoError(t, err)

	assert.Equal(t, module.Coordinate{Group: "com.example", Name: "app", Version: "1.2.0"}, md.Coordinate)
	assert.Equal(t, "jar", md.Packaging)
	assert.Equal(t, module.FormatPOM, md.Source)
	require.Len(t, md.Dependencies, 4)

	slf4j := md.Dependencies[0]
	assert.Equal(t, "org.slf4j", slf4j.Group)
	assert.Equal(t, "1.7.36", slf4j.Version, "property reference should be interpolated")
	assert.Equal(t, module.ScopeCompile, slf4j.EffectiveScope())

	guava := md.Dependencies[1]
	assert.Equal(t, module.ScopeRuntime, guava.Scope)
	require.Len(t, guava.Exclusions, 1)
	assert.True(t, guava.Exclusions[0].Matches(module.ID{Group: "com.google.code.findbugs", Name: "jsr305"}))

	assert.True(t, md.Dependencies[2].Optional)
	assert.Equal(t, module.ScopeTest, md.Dependencies[3].Scope)
	assert.False(t, md.Dependencies[3].Scope.Transitive())

	require.Len(t, md.Constraints, 1)
	c := md.Constraints[0]
	assert.Equal(t, "jackson-databind", c.Name)
	assert.Equal(t, "2.15.2", c.Version)
	assert.Equal(t, module.StrengthRequire, c.Strength)
}

func TestParseBOM(t *testing.T) {
	bom := `<project>
  <groupId>com.example</groupId>
  <artifactId>platform</artifactId>
  <version>1.0</version>
  <packaging>pom</packaging>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.x</groupId>
        <artifactId>y</artifactId>
        <version>1.2</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

	md, err := Parse([]byte(bom))
	require.NoError(t, err)
	assert.True(t, md.IsBOM())
	require.Len(t, md.Constraints, 1)
	assert.Equal(t, module.ID{Group: "com.x", Name: "y"}, md.Constraints[0].ID())
}

func TestParseParentFallback(t *testing.T) {
	p := `<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>3.0</version>
  </parent>
  <artifactId>child</artifactId>
</project>`

	md, err := Parse([]byte(p))
	require.NoError(t, err)
	assert.Equal(t, module.Coordinate{Group: "com.example", Name: "child", Version: "3.0"}, md.Coordinate)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("<project><groupId>a</groupId"))
	assert.Error(t, err)

	_, err = Parse([]byte("<project><artifactId>x</artifactId></project>"))
	assert.Error(t, err, "missing coordinates should fail")
}
