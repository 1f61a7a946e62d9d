package testutil

// Identifiers used by the sample packages.
const (
	SamplePackageID    = "{00000000-0000-4000-8000-000000000001}"
	SampleWarehouseID  = "{00000000-0000-4000-8000-0000000000C1}"
	SampleMailServerID = "{00000000-0000-4000-8000-0000000000C2}"
	SampleTruncateID   = "{00000000-0000-4000-8000-0000000000A1}"
	SampleFetchID      = "{00000000-0000-4000-8000-0000000000A2}"
	SampleLoopID       = "{00000000-0000-4000-8000-0000000000A3}"
	SampleCountID      = "{00000000-0000-4000-8000-0000000000A4}"
	SampleCopyID       = "{00000000-0000-4000-8000-0000000000A5}"
	SampleMailID       = "{00000000-0000-4000-8000-0000000000A6}"
	SampleNotifyVarID  = "{00000000-0000-4000-8000-0000000000B4}"
	SampleBatchVarID   = "{00000000-0000-4000-8000-0000000000B1}"
)

// SamplePackage2008 is a package in the 2008 layout exercising every
// translated task type: SQL tasks with parameter and result bindings, a
// foreach loop over a rowset, a pipeline with source, transform and
// destination, a mail task and a guarded precedence constraint.
const SamplePackage2008 = `<?xml version="1.0"?>
<DTS:Executable xmlns:DTS="www.microsoft.com/SqlServer/Dts" DTS:ExecutableType="SSIS.Package.2">
  <DTS:Property DTS:Name="ObjectName">Customer Load</DTS:Property>
  <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-000000000001}</DTS:Property>
  <DTS:Property DTS:Name="Description">Loads customers into staging</DTS:Property>
  <DTS:ConnectionManager>
    <DTS:Property DTS:Name="ObjectName">Warehouse</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000C1}</DTS:Property>
    <DTS:Property DTS:Name="CreationName">OLEDB</DTS:Property>
    <DTS:ObjectData>
      <DTS:ConnectionManager>
        <DTS:Property DTS:Name="ConnectionString">Data Source=.;Initial Catalog=dw;Provider=SQLNCLI10.1;Integrated Security=SSPI;</DTS:Property>
      </DTS:ConnectionManager>
    </DTS:ObjectData>
  </DTS:ConnectionManager>
  <DTS:ConnectionManager>
    <DTS:Property DTS:Name="ObjectName">Mail Server</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000C2}</DTS:Property>
    <DTS:Property DTS:Name="CreationName">SMTP</DTS:Property>
    <DTS:ObjectData>
      <SmtpConnectionManager ConnectionString="SmtpServer=smtp.example.com;UseWindowsAuthentication=False;EnableSsl=False;"/>
    </DTS:ObjectData>
  </DTS:ConnectionManager>
  <DTS:Variable>
    <DTS:Property DTS:Name="Namespace">User</DTS:Property>
    <DTS:Property DTS:Name="ObjectName">BatchSize</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000B1}</DTS:Property>
    <DTS:Property DTS:Name="Description">Rows fetched per batch</DTS:Property>
    <DTS:VariableValue DTS:DataType="3">500</DTS:VariableValue>
  </DTS:Variable>
  <DTS:Variable>
    <DTS:Property DTS:Name="Namespace">User</DTS:Property>
    <DTS:Property DTS:Name="ObjectName">Customers</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000B2}</DTS:Property>
    <DTS:VariableValue DTS:DataType="13"></DTS:VariableValue>
  </DTS:Variable>
  <DTS:Variable>
    <DTS:Property DTS:Name="Namespace">User</DTS:Property>
    <DTS:Property DTS:Name="ObjectName">CustomerID</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000B3}</DTS:Property>
    <DTS:VariableValue DTS:DataType="3">0</DTS:VariableValue>
  </DTS:Variable>
  <DTS:Variable>
    <DTS:Property DTS:Name="Namespace">User</DTS:Property>
    <DTS:Property DTS:Name="ObjectName">Notify</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000B4}</DTS:Property>
    <DTS:VariableValue DTS:DataType="11">-1</DTS:VariableValue>
  </DTS:Variable>
  <DTS:Variable>
    <DTS:Property DTS:Name="Namespace">User</DTS:Property>
    <DTS:Property DTS:Name="ObjectName">OrderCount</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000B5}</DTS:Property>
    <DTS:VariableValue DTS:DataType="3">0</DTS:VariableValue>
  </DTS:Variable>
  <DTS:Executable DTS:ExecutableType="Microsoft.SqlServer.Dts.Tasks.ExecuteSQLTask.ExecuteSQLTask, Microsoft.SqlServer.SQLTask, Version=10.0.0.0">
    <DTS:Property DTS:Name="ObjectName">Truncate Staging</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000A1}</DTS:Property>
    <DTS:ObjectData>
      <SQLTask:SqlTaskData xmlns:SQLTask="www.microsoft.com/sqlserver/dts/tasks/sqltask" SQLTask:Connection="{00000000-0000-4000-8000-0000000000C1}" SQLTask:SqlStatementSource="TRUNCATE TABLE stg.Customer"/>
    </DTS:ObjectData>
  </DTS:Executable>
  <DTS:Executable DTS:ExecutableType="Microsoft.SqlServer.Dts.Tasks.ExecuteSQLTask.ExecuteSQLTask, Microsoft.SqlServer.SQLTask, Version=10.0.0.0">
    <DTS:Property DTS:Name="ObjectName">Fetch Customers</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000A2}</DTS:Property>
    <DTS:ObjectData>
      <SQLTask:SqlTaskData xmlns:SQLTask="www.microsoft.com/sqlserver/dts/tasks/sqltask" SQLTask:Connection="{00000000-0000-4000-8000-0000000000C1}" SQLTask:SqlStatementSource="SELECT CustomerID FROM dbo.Customer WHERE Batch = @BatchSize" SQLTask:ResultType="ResultSetType_Rowset">
        <SQLTask:ParameterBinding SQLTask:ParameterName="BatchSize" SQLTask:DtsVariableName="User::BatchSize"/>
        <SQLTask:ResultBinding SQLTask:ResultName="0" SQLTask:DtsVariableName="User::Customers"/>
      </SQLTask:SqlTaskData>
    </DTS:ObjectData>
  </DTS:Executable>
  <DTS:Executable DTS:ExecutableType="STOCK:FOREACHLOOP">
    <DTS:Property DTS:Name="ObjectName">Each Customer</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000A3}</DTS:Property>
    <DTS:ForEachEnumerator>
      <DTS:Property DTS:Name="ObjectName">ADO Enumerator</DTS:Property>
      <DTS:ObjectData>
        <FEEADO EnumType="EnumerateRowsInFirstTable" VarName="User::Customers"/>
      </DTS:ObjectData>
    </DTS:ForEachEnumerator>
    <DTS:ForEachVariableMapping>
      <DTS:Property DTS:Name="ValueIndex">0</DTS:Property>
      <DTS:Property DTS:Name="VariableName">User::CustomerID</DTS:Property>
    </DTS:ForEachVariableMapping>
    <DTS:Executable DTS:ExecutableType="Microsoft.SqlServer.Dts.Tasks.ExecuteSQLTask.ExecuteSQLTask, Microsoft.SqlServer.SQLTask, Version=10.0.0.0">
      <DTS:Property DTS:Name="ObjectName">Count Orders</DTS:Property>
      <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000A4}</DTS:Property>
      <DTS:ObjectData>
        <SQLTask:SqlTaskData xmlns:SQLTask="www.microsoft.com/sqlserver/dts/tasks/sqltask" SQLTask:Connection="{00000000-0000-4000-8000-0000000000C1}" SQLTask:SqlStatementSource="SELECT COUNT(*) FROM dbo.Orders WHERE CustomerID = @CustomerID" SQLTask:ResultType="ResultSetType_SingleRow">
          <SQLTask:ParameterBinding SQLTask:ParameterName="CustomerID" SQLTask:DtsVariableName="User::CustomerID"/>
          <SQLTask:ResultBinding SQLTask:ResultName="0" SQLTask:DtsVariableName="User::OrderCount"/>
        </SQLTask:SqlTaskData>
      </DTS:ObjectData>
    </DTS:Executable>
  </DTS:Executable>
  <DTS:Executable DTS:ExecutableType="SSIS.Pipeline.2">
    <DTS:Property DTS:Name="ObjectName">Copy Customers</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000A5}</DTS:Property>
    <DTS:ObjectData>
      <pipeline id="0" name="pipelineXml" version="1">
        <components>
          <component id="1" name="Customer Source" componentClassID="{BCEFE59B-6819-47F7-A125-63753B33ABB7}">
            <properties>
              <property id="2" name="SqlCommand">SELECT CustomerID, Name FROM dbo.Customer WHERE Batch = ?</property>
              <property id="3" name="ParameterMapping">"Parameter0:Input",{00000000-0000-4000-8000-0000000000B1};</property>
            </properties>
            <connections>
              <connection id="4" name="OleDbConnection" connectionManagerID="{00000000-0000-4000-8000-0000000000C1}"/>
            </connections>
            <outputs>
              <output id="5" name="OLE DB Source Output" isErrorOut="false">
                <outputColumns>
                  <outputColumn id="10" name="CustomerID" lineageId="10" dataType="i4"/>
                  <outputColumn id="11" name="Name" lineageId="11" dataType="wstr" length="50"/>
                </outputColumns>
              </output>
              <output id="6" name="OLE DB Source Error Output" isErrorOut="true">
                <outputColumns>
                  <outputColumn id="12" name="ErrorCode" lineageId="12" dataType="i4"/>
                </outputColumns>
              </output>
            </outputs>
          </component>
          <component id="30" name="Customer Destination" componentClassID="{5A0B62E8-D91D-49F5-94A5-7BE58DE508F0}">
            <properties>
              <property id="31" name="OpenRowset">[stg].[Customer]</property>
            </properties>
            <connections>
              <connection id="32" name="OleDbConnection" connectionManagerID="{00000000-0000-4000-8000-0000000000C1}"/>
            </connections>
            <inputs>
              <input id="33" name="OLE DB Destination Input">
                <inputColumns>
                  <inputColumn id="34" lineageId="10" externalMetadataColumnId="40"/>
                  <inputColumn id="35" lineageId="21" externalMetadataColumnId="41"/>
                </inputColumns>
                <externalMetadataColumns>
                  <externalMetadataColumn id="40" name="CustomerID" dataType="i4"/>
                  <externalMetadataColumn id="41" name="Name" dataType="str"/>
                </externalMetadataColumns>
              </input>
            </inputs>
          </component>
          <component id="20" name="Convert Name" componentClassID="{BD06A22E-BC69-4AF7-A69B-C44C2EF684BB}">
            <outputs>
              <output id="22" name="Data Conversion Output" isErrorOut="false">
                <outputColumns>
                  <outputColumn id="21" name="NameAnsi" lineageId="21" dataType="str" length="50"/>
                </outputColumns>
              </output>
            </outputs>
          </component>
        </components>
      </pipeline>
    </DTS:ObjectData>
  </DTS:Executable>
  <DTS:Executable DTS:ExecutableType="Microsoft.SqlServer.Dts.Tasks.SendMailTask.SendMailTask, Microsoft.SqlServer.SendMailTask, Version=10.0.0.0">
    <DTS:Property DTS:Name="ObjectName">Send Summary</DTS:Property>
    <DTS:Property DTS:Name="DTSID">{00000000-0000-4000-8000-0000000000A6}</DTS:Property>
    <DTS:ObjectData>
      <SendMailTask:SendMailTaskData xmlns:SendMailTask="www.microsoft.com/sqlserver/dts/tasks/sendmailtask" SendMailTask:SMTPServer="{00000000-0000-4000-8000-0000000000C2}" SendMailTask:From="etl@example.com" SendMailTask:To="ops@example.com;dba@example.com" SendMailTask:CC="lead@example.com" SendMailTask:Subject="Customer load finished" SendMailTask:MessageSourceType="DirectInput" SendMailTask:MessageSource="The customer load completed."/>
    </DTS:ObjectData>
  </DTS:Executable>
  <DTS:PrecedenceConstraint>
    <DTS:Property DTS:Name="ObjectName">Constraint</DTS:Property>
    <DTS:Property DTS:Name="Value">0</DTS:Property>
    <DTS:Property DTS:Name="EvalOp">2</DTS:Property>
    <DTS:Property DTS:Name="LogicalAnd">-1</DTS:Property>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A1}" DTS:IsFrom="-1"/>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A2}" DTS:IsFrom="0"/>
  </DTS:PrecedenceConstraint>
  <DTS:PrecedenceConstraint>
    <DTS:Property DTS:Name="ObjectName">Constraint 1</DTS:Property>
    <DTS:Property DTS:Name="Value">0</DTS:Property>
    <DTS:Property DTS:Name="EvalOp">2</DTS:Property>
    <DTS:Property DTS:Name="LogicalAnd">-1</DTS:Property>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A2}" DTS:IsFrom="-1"/>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A3}" DTS:IsFrom="0"/>
  </DTS:PrecedenceConstraint>
  <DTS:PrecedenceConstraint>
    <DTS:Property DTS:Name="ObjectName">Constraint 2</DTS:Property>
    <DTS:Property DTS:Name="Value">0</DTS:Property>
    <DTS:Property DTS:Name="EvalOp">2</DTS:Property>
    <DTS:Property DTS:Name="LogicalAnd">-1</DTS:Property>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A3}" DTS:IsFrom="-1"/>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A5}" DTS:IsFrom="0"/>
  </DTS:PrecedenceConstraint>
  <DTS:PrecedenceConstraint>
    <DTS:Property DTS:Name="ObjectName">Constraint 3</DTS:Property>
    <DTS:Property DTS:Name="Value">0</DTS:Property>
    <DTS:Property DTS:Name="EvalOp">3</DTS:Property>
    <DTS:Property DTS:Name="Expression">@[User::Notify] == True</DTS:Property>
    <DTS:Property DTS:Name="LogicalAnd">-1</DTS:Property>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A5}" DTS:IsFrom="-1"/>
    <DTS:Executable IDREF="{00000000-0000-4000-8000-0000000000A6}" DTS:IsFrom="0"/>
  </DTS:PrecedenceConstraint>
</DTS:Executable>
`

// SamplePackage2012 is a package in the 2012+ layout: fields are attributes,
// children are grouped under DTS:Executables and friends, and constraints
// refer to tasks by refId.
const SamplePackage2012 = `<?xml version="1.0"?>
<DTS:Executable xmlns:DTS="www.microsoft.com/SqlServer/Dts" DTS:refId="Package" DTS:ExecutableType="Microsoft.Package" DTS:ObjectName="Nightly" DTS:DTSID="{10000000-0000-4000-8000-000000000001}">
  <DTS:ConnectionManagers>
    <DTS:ConnectionManager DTS:refId="Package.ConnectionManagers[Source]" DTS:CreationName="ADO.NET:System.Data.SqlClient.SqlConnection, System.Data" DTS:ObjectName="Source" DTS:DTSID="{10000000-0000-4000-8000-0000000000C1}">
      <DTS:ObjectData>
        <DTS:ConnectionManager DTS:ConnectionString="Data Source=db;Initial Catalog=src;Integrated Security=True;"/>
      </DTS:ObjectData>
    </DTS:ConnectionManager>
  </DTS:ConnectionManagers>
  <DTS:Variables>
    <DTS:Variable DTS:Namespace="User" DTS:ObjectName="i" DTS:DTSID="{10000000-0000-4000-8000-0000000000B1}">
      <DTS:VariableValue DTS:DataType="3">0</DTS:VariableValue>
    </DTS:Variable>
  </DTS:Variables>
  <DTS:Executables>
    <DTS:Executable DTS:refId="Package\Retry" DTS:ExecutableType="STOCK:FORLOOP" DTS:ObjectName="Retry" DTS:DTSID="{10000000-0000-4000-8000-0000000000A1}" DTS:InitExpression="@[User::i] = 0" DTS:EvalExpression="@[User::i] &lt; 3" DTS:AssignExpression="@[User::i] = @[User::i] + 1">
      <DTS:Executables>
        <DTS:Executable DTS:refId="Package\Retry\Ping" DTS:ExecutableType="Microsoft.ExecuteSQLTask" DTS:ObjectName="Ping" DTS:DTSID="{10000000-0000-4000-8000-0000000000A2}">
          <DTS:ObjectData>
            <SQLTask:SqlTaskData xmlns:SQLTask="www.microsoft.com/sqlserver/dts/tasks/sqltask" SQLTask:Connection="{10000000-0000-4000-8000-0000000000C1}" SQLTask:SqlStatementSource="SELECT 1"/>
          </DTS:ObjectData>
        </DTS:Executable>
      </DTS:Executables>
    </DTS:Executable>
    <DTS:Executable DTS:refId="Package\Archive" DTS:ExecutableType="Microsoft.FileSystemTask" DTS:ObjectName="Archive" DTS:DTSID="{10000000-0000-4000-8000-0000000000A3}"/>
  </DTS:Executables>
  <DTS:PrecedenceConstraints>
    <DTS:PrecedenceConstraint DTS:refId="Package.PrecedenceConstraints[Constraint]" DTS:From="Package\Retry" DTS:To="Package\Archive" DTS:LogicalAnd="True" DTS:ObjectName="Constraint"/>
  </DTS:PrecedenceConstraints>
</DTS:Executable>
`
